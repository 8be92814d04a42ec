package summarizer

import (
	"fmt"
	"os"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/nguyentantai21042004/summary-flow/internal/config"
	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/internal/proxy"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

const (
	PromptFile     = "summary_prompt.txt"
	GenerationFile = "summary_generation.txt"
	JSONFile       = "summary_generation.json"
	ReportFile     = "summary_report.docx"
)

type implSummarizer struct {
	cfg       *config.Config
	generator Generator
	model     string
	template  string
	logger    logger.Logger
}

// New creates a Summarizer using the backend selected by cfg.Summarizer.Backend
func New(cfg *config.Config, exec executor.Executor, log logger.Logger) (Summarizer, error) {
	template, err := LoadPromptTemplate(cfg.Summarizer.PromptTemplate, cfg.Summarizer.PromptFile)
	if err != nil {
		return nil, err
	}

	s := &implSummarizer{
		cfg:      cfg,
		template: template,
		logger:   log,
	}

	switch cfg.Summarizer.Backend {
	case "", "llama":
		s.generator = &llamaGenerator{
			executor: exec,
			cfg:      cfg.Llama,
			python:   cfg.Tools.Python,
			logger:   log,
		}
		s.model = cfg.Llama.Model

	case "gemini":
		apiKeys := splitKeys(os.Getenv(cfg.Gemini.APIKeyEnv))
		if len(apiKeys) == 0 {
			return nil, fmt.Errorf("%s is not set", cfg.Gemini.APIKeyEnv)
		}
		httpClient, err := proxy.NewClient(cfg.Network.SocksProxy, cfg.Network.Timeout)
		if err != nil {
			return nil, err
		}
		s.generator = &geminiGenerator{
			apiKeys:    apiKeys,
			baseURL:    cfg.Gemini.BaseURL,
			httpClient: httpClient,
			logger:     log,
		}
		s.model = cfg.Gemini.Model

	case "openai":
		apiKey := os.Getenv(cfg.OpenAI.APIKeyEnv)
		if apiKey == "" {
			return nil, fmt.Errorf("%s is not set", cfg.OpenAI.APIKeyEnv)
		}
		httpClient, err := proxy.NewClient(cfg.Network.SocksProxy, cfg.Network.Timeout)
		if err != nil {
			return nil, err
		}
		opts := []option.RequestOption{
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(httpClient),
		}
		if cfg.OpenAI.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
		}
		client := openai.NewClient(opts...)
		s.generator = &openAIGenerator{client: client, logger: log}
		s.model = cfg.OpenAI.Model

	default:
		return nil, fmt.Errorf("unknown summarizer backend: %s", cfg.Summarizer.Backend)
	}

	return s, nil
}

// NewWithGenerator creates a Summarizer around an explicit Generator
func NewWithGenerator(cfg *config.Config, gen Generator, model string, log logger.Logger) (Summarizer, error) {
	template, err := LoadPromptTemplate(cfg.Summarizer.PromptTemplate, cfg.Summarizer.PromptFile)
	if err != nil {
		return nil, err
	}
	return &implSummarizer{
		cfg:       cfg,
		generator: gen,
		model:     model,
		template:  template,
		logger:    log,
	}, nil
}

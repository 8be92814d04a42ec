package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultWhisperModel = "ggml-base.en.bin"
	DefaultLlamaModel   = "llama-2-7b.Q4_K_M.gguf"
)

type Config struct {
	Paths       PathsConfig       `yaml:"paths"`
	Tools       ToolsConfig       `yaml:"tools"`
	Whisper     WhisperConfig     `yaml:"whisper"`
	Llama       LlamaConfig       `yaml:"llama"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Network     NetworkConfig     `yaml:"network"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Verbosity   int               `yaml:"verbosity"`
}

type PathsConfig struct {
	DataRoot  string `yaml:"data_root"`
	Audio     string `yaml:"audio"`
	Processed string `yaml:"processed"`
	Summaries string `yaml:"summaries"`
	Inbox     string `yaml:"inbox"`
	Archived  string `yaml:"archived"`
	Temp      string `yaml:"temp"`
}

type ToolsConfig struct {
	Downloader           string `yaml:"downloader"`
	DownloaderInstallURL string `yaml:"downloader_install_url"`
	Transcoder           string `yaml:"transcoder"`
	TranscoderInstallURL string `yaml:"transcoder_install_url"`
	Python               string `yaml:"python"`
}

type WhisperConfig struct {
	Dir      string `yaml:"dir"`
	Binary   string `yaml:"binary"`
	Model    string `yaml:"model"`
	Language string `yaml:"language"`
	Threads  int    `yaml:"threads"`
}

type LlamaConfig struct {
	Dir           string `yaml:"dir"`
	Binary        string `yaml:"binary"`
	Model         string `yaml:"model"`
	GrammarScript string `yaml:"grammar_script"`
	Tokens        int    `yaml:"tokens"`
	Context       int    `yaml:"context"`
	JSONSchema    string `yaml:"json_schema"`
}

type SummarizerConfig struct {
	Backend        string `yaml:"backend"`
	PromptTemplate string `yaml:"prompt_template"`
	PromptFile     string `yaml:"prompt_file"`
	StrictMarkers  bool   `yaml:"strict_markers"`
	Report         bool   `yaml:"report"`
}

// GeminiConfig names the env var holding the API key. It may hold several
// comma-separated keys; the backend rotates to the next one when a key is rate limited.
type GeminiConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

type OpenAIConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

type NetworkConfig struct {
	SocksProxy string        `yaml:"socks_proxy"`
	Timeout    time.Duration `yaml:"timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

// Default returns the built-in configuration rooted at ./data-test
func Default() *Config {
	root := "data-test"
	return &Config{
		Paths: PathsConfig{
			DataRoot:  root,
			Audio:     filepath.Join(root, "audio"),
			Processed: filepath.Join(root, "processed"),
			Summaries: filepath.Join(root, "summaries"),
			Inbox:     filepath.Join(root, "inbox"),
			Archived:  filepath.Join(root, "archived"),
		},
		Tools: ToolsConfig{
			Downloader:           "yt-dlp",
			DownloaderInstallURL: "https://github.com/yt-dlp/yt-dlp/wiki/Installation",
			Transcoder:           "ffmpeg",
			TranscoderInstallURL: "https://ffmpeg.org/download.html",
			Python:               "python3",
		},
		Whisper: WhisperConfig{
			Dir:    "whisper.cpp",
			Binary: "main",
			Model:  DefaultWhisperModel,
		},
		Llama: LlamaConfig{
			Dir:           "llama.cpp",
			Binary:        "main",
			Model:         DefaultLlamaModel,
			GrammarScript: filepath.Join("examples", "json_schema_to_grammar.py"),
			Tokens:        2048 + 400,
			Context:       2048,
		},
		Summarizer: SummarizerConfig{
			Backend: "llama",
		},
		Gemini: GeminiConfig{
			Model:     "gemini-2.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		OpenAI: OpenAIConfig{
			Model:     "gpt-4o-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Network: NetworkConfig{
			Timeout: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Format: "text",
		},
		Performance: PerformanceConfig{
			MaxConcurrent: 1,
		},
		Verbosity: 1,
	}
}

// Load reads a YAML file over the defaults and validates the result
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Default()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

func (c *Config) Validate() error {
	if c.Tools.Downloader == "" {
		return fmt.Errorf("tools.downloader is required")
	}
	if c.Tools.Transcoder == "" {
		return fmt.Errorf("tools.transcoder is required")
	}
	if c.Whisper.Dir == "" {
		return fmt.Errorf("whisper.dir is required")
	}
	if c.Whisper.Model == "" {
		return fmt.Errorf("whisper.model is required")
	}
	if c.Llama.Dir == "" {
		return fmt.Errorf("llama.dir is required")
	}
	if c.Llama.Model == "" {
		return fmt.Errorf("llama.model is required")
	}
	if c.Paths.Audio == "" {
		return fmt.Errorf("paths.audio is required")
	}
	if c.Paths.Processed == "" {
		return fmt.Errorf("paths.processed is required")
	}

	switch strings.ToLower(c.Summarizer.Backend) {
	case "":
		c.Summarizer.Backend = "llama"
	case "llama", "gemini", "openai":
		c.Summarizer.Backend = strings.ToLower(c.Summarizer.Backend)
	default:
		return fmt.Errorf("summarizer.backend must be one of llama, gemini, openai: got %q", c.Summarizer.Backend)
	}

	if c.Llama.Tokens <= 0 || c.Llama.Tokens > math.MaxInt32 {
		return fmt.Errorf("llama.tokens must be between 1 and %d", math.MaxInt32)
	}
	if c.Llama.Context <= 0 || c.Llama.Context > math.MaxInt32 {
		return fmt.Errorf("llama.context must be between 1 and %d", math.MaxInt32)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
		c.Logging.Level = strings.ToLower(c.Logging.Level)
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error: got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json: got %q", c.Logging.Format)
	}
	if c.Verbosity < 0 {
		return fmt.Errorf("verbosity must not be negative")
	}

	if c.Paths.DataRoot == "" {
		c.Paths.DataRoot = filepath.Dir(c.Paths.Audio)
	}
	if c.Paths.Summaries == "" {
		c.Paths.Summaries = filepath.Join(c.Paths.DataRoot, "summaries")
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = filepath.Join(c.Paths.DataRoot, "inbox")
	}
	if c.Paths.Archived == "" {
		c.Paths.Archived = filepath.Join(c.Paths.DataRoot, "archived")
	}
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = "main"
	}
	if c.Llama.Binary == "" {
		c.Llama.Binary = "main"
	}
	if c.Llama.GrammarScript == "" {
		c.Llama.GrammarScript = filepath.Join("examples", "json_schema_to_grammar.py")
	}
	if c.Tools.Python == "" {
		c.Tools.Python = "python3"
	}
	if c.Performance.MaxConcurrent <= 0 {
		c.Performance.MaxConcurrent = 1
	}
	if c.Network.Timeout <= 0 {
		c.Network.Timeout = 10 * time.Minute
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.APIKeyEnv == "" {
		c.Gemini.APIKeyEnv = "GEMINI_API_KEY"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.OpenAI.APIKeyEnv == "" {
		c.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}

	return nil
}

// WhisperBinary is the speech-recognition executable path
func (c *Config) WhisperBinary() string {
	return filepath.Join(c.Whisper.Dir, c.Whisper.Binary)
}

// LlamaBinary is the text-generation executable path
func (c *Config) LlamaBinary() string {
	return filepath.Join(c.Llama.Dir, c.Llama.Binary)
}

// Dirs lists the output directories the pipeline writes into
func (c *Config) Dirs() []string {
	return []string{
		c.Paths.Audio,
		c.Paths.Processed,
		c.Paths.Summaries,
	}
}

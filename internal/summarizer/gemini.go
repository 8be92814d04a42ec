package summarizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

type geminiGenerator struct {
	apiKeys    []string
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger

	mu         sync.Mutex
	currentKey int
}

func (g *geminiGenerator) Name() string { return "gemini" }

// Generate sends the prompt to Gemini and writes the response text to w.
// Rotates API keys on 429 / quota errors.
func (g *geminiGenerator) Generate(ctx context.Context, req GenerateRequest, w io.Writer) error {
	if req.SchemaPath != "" {
		g.logger.Warn(ctx, "Gemini backend ignores JSON schema %s", req.SchemaPath)
	}

	var lastErr error
	for range g.apiKeys {
		idx, key := g.key()

		text, err := g.generateWith(ctx, key, req)
		if err == nil {
			_, err = io.WriteString(w, text)
			return err
		}
		if !isRateLimited(err) {
			return executor.NewStageError("generate", err)
		}

		g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
		g.rotateKey(idx)
		lastErr = err
	}

	return executor.NewStageError("generate", fmt.Errorf("all API keys exhausted: %w", lastErr))
}

func (g *geminiGenerator) generateWith(ctx context.Context, key string, req GenerateRequest) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  g.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: g.baseURL},
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.Prompt), &genai.GenerateContentConfig{
		MaxOutputTokens:  int32(req.Tokens),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if text == "" {
		return "", fmt.Errorf("empty response from Gemini")
	}
	return text, nil
}

func (g *geminiGenerator) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey moves past idx unless another run already rotated
func (g *geminiGenerator) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusTooManyRequests || apiErr.Status == "RESOURCE_EXHAUSTED") {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

// splitKeys parses a comma-separated key list, dropping blanks
func splitKeys(v string) []string {
	var keys []string
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

package summarizer

import (
	"context"
	"fmt"
	"io"

	openai "github.com/openai/openai-go/v3"

	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

type openAIGenerator struct {
	client openai.Client
	logger logger.Logger
}

func (g *openAIGenerator) Name() string { return "openai" }

// Generate sends the prompt as a single user message and writes the reply to w.
func (g *openAIGenerator) Generate(ctx context.Context, req GenerateRequest, w io.Writer) error {
	if req.SchemaPath != "" {
		g.logger.Warn(ctx, "OpenAI backend ignores JSON schema %s", req.SchemaPath)
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Model:               openai.ChatModel(req.Model),
		MaxCompletionTokens: openai.Int(int64(req.Tokens)),
	})
	if err != nil {
		return executor.NewStageError("generate", fmt.Errorf("chat completion: %w", err))
	}

	if len(resp.Choices) == 0 {
		return executor.NewStageError("generate", fmt.Errorf("no choices in response"))
	}

	_, err = io.WriteString(w, resp.Choices[0].Message.Content)
	return err
}

package summarizer

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/summary-flow/internal/config"
	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

// llamaGenerator runs the llama.cpp main binary against the prompt file
type llamaGenerator struct {
	executor executor.Executor
	cfg      config.LlamaConfig
	python   string
	logger   logger.Logger
}

func (g *llamaGenerator) Name() string { return "llama" }

// Generate streams llama.cpp stdout (echoed prompt followed by the completion) into w
func (g *llamaGenerator) Generate(ctx context.Context, req GenerateRequest, w io.Writer) error {
	bin := filepath.Join(req.ToolDir, g.cfg.Binary)

	// -m: model file
	// --file: prompt file
	// -n: number of tokens to predict
	// -c: context size
	// -e: process escape sequences in the prompt
	args := []string{
		"-m", filepath.Join(req.ToolDir, "models", req.Model),
		"--file", req.PromptPath,
		"-n", strconv.Itoa(req.Tokens),
		"-c", strconv.Itoa(req.ContextSize),
		"-e",
	}

	if req.SchemaPath != "" {
		grammar, err := g.compileGrammar(ctx, req.ToolDir, req.SchemaPath)
		if err != nil {
			return err
		}
		args = append(args, "--grammar", grammar)
	}

	g.logger.Debug(ctx, "%s %s", bin, strings.Join(args, " "))

	if err := g.executor.ExecuteTo(ctx, w, bin, args...); err != nil {
		return executor.NewStageError("generate", err)
	}
	return nil
}

// compileGrammar converts a JSON schema into a GBNF grammar with the helper script shipped in llama.cpp
func (g *llamaGenerator) compileGrammar(ctx context.Context, toolDir, schemaPath string) (string, error) {
	script := filepath.Join(toolDir, g.cfg.GrammarScript)
	g.logger.Info(ctx, "Compiling JSON grammar from %s", schemaPath)

	out, err := g.executor.Execute(ctx, g.python, script, schemaPath)
	if err != nil {
		return "", executor.NewStageError("grammar", err)
	}

	grammar := strings.TrimSpace(out)
	if grammar == "" {
		return "", executor.NewStageError("grammar", fmt.Errorf("%s produced an empty grammar for %s", script, schemaPath))
	}
	return grammar, nil
}

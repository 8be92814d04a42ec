package summarizer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Summarize renders the prompt, runs the generator and writes the prompt,
// raw generation and extracted JSON into req.OutDir. When extraction fails the
// returned Artifacts still name the prompt and generation files for inspection.
func (s *implSummarizer) Summarize(ctx context.Context, req Request) (Artifacts, error) {
	req = s.withDefaults(req)

	outDir, err := filepath.Abs(req.OutDir)
	if err != nil {
		return Artifacts{}, fmt.Errorf("resolve out dir: %w", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return Artifacts{}, fmt.Errorf("create out dir: %w", err)
	}

	arts := Artifacts{
		PromptPath:     filepath.Join(outDir, PromptFile),
		GenerationPath: filepath.Join(outDir, GenerationFile),
	}

	// Step 1: render and persist the prompt
	transcript, err := os.ReadFile(req.TranscriptPath)
	if err != nil {
		return Artifacts{}, fmt.Errorf("read transcript: %w", err)
	}
	prompt, err := RenderPrompt(req.PromptTemplate, string(transcript))
	if err != nil {
		return Artifacts{}, err
	}
	if err := os.WriteFile(arts.PromptPath, []byte(prompt), 0644); err != nil {
		return Artifacts{}, fmt.Errorf("write prompt: %w", err)
	}

	// Step 2: run the generator into the raw output file
	s.logger.Info(ctx, "Summarizing %s with %s backend...", req.TranscriptPath, s.generator.Name())
	if err := s.generate(ctx, req, prompt, arts.GenerationPath); err != nil {
		return Artifacts{}, err
	}

	// Step 3: recover the JSON from what is on disk
	promptOnDisk, err := os.ReadFile(arts.PromptPath)
	if err != nil {
		return Artifacts{}, fmt.Errorf("read prompt: %w", err)
	}
	generation, err := os.ReadFile(arts.GenerationPath)
	if err != nil {
		return Artifacts{}, fmt.Errorf("read generation: %w", err)
	}

	js, err := ExtractJSON(string(generation), string(promptOnDisk), s.cfg.Summarizer.StrictMarkers)
	if err != nil {
		return arts, fmt.Errorf("extract JSON from %s: %w", arts.GenerationPath, err)
	}

	arts.JSONPath = filepath.Join(outDir, JSONFile)
	if err := os.WriteFile(arts.JSONPath, js, 0644); err != nil {
		return arts, fmt.Errorf("write JSON: %w", err)
	}

	if s.cfg.Summarizer.Report {
		reportPath := filepath.Join(outDir, ReportFile)
		title := strings.TrimSuffix(filepath.Base(req.TranscriptPath), filepath.Ext(req.TranscriptPath))
		if err := WriteReport(title, js, reportPath); err != nil {
			s.logger.Warn(ctx, "Failed to write report %s: %v", reportPath, err)
		} else {
			arts.ReportPath = reportPath
		}
	}

	s.logger.Info(ctx, "Summary written: %s", arts.JSONPath)
	return arts, nil
}

func (s *implSummarizer) generate(ctx context.Context, req Request, prompt, outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create generation file: %w", err)
	}

	genErr := s.generator.Generate(ctx, GenerateRequest{
		Prompt:      prompt,
		PromptPath:  filepath.Join(filepath.Dir(outPath), PromptFile),
		ToolDir:     req.ToolDir,
		Model:       req.Model,
		Tokens:      req.Tokens,
		ContextSize: req.ContextSize,
		SchemaPath:  req.SchemaPath,
	}, f)

	closeErr := f.Close()
	if genErr != nil {
		return genErr
	}
	if closeErr != nil {
		return fmt.Errorf("close generation file: %w", closeErr)
	}
	return nil
}

func (s *implSummarizer) withDefaults(req Request) Request {
	if req.OutDir == "" {
		req.OutDir = s.cfg.Paths.Summaries
	}
	if req.ToolDir == "" {
		req.ToolDir = s.cfg.Llama.Dir
	}
	if req.Model == "" {
		req.Model = s.model
	}
	if req.PromptTemplate == "" {
		req.PromptTemplate = s.template
	}
	if req.Tokens <= 0 {
		req.Tokens = s.cfg.Llama.Tokens
	}
	if req.ContextSize <= 0 {
		req.ContextSize = s.cfg.Llama.Context
	}
	if req.SchemaPath == "" {
		req.SchemaPath = s.cfg.Llama.JSONSchema
	}
	return req
}

package summarizer

import (
	"context"
	"io"
)

// Summarizer renders a prompt from a transcript, runs a text-generation
// backend on it and recovers the generated JSON.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (Artifacts, error)
}

// Request describes one summarization. Zero fields fall back to configuration.
type Request struct {
	TranscriptPath string
	OutDir         string
	ToolDir        string
	Model          string
	PromptTemplate string
	Tokens         int
	ContextSize    int
	SchemaPath     string
}

// Artifacts are the absolute paths written by a summarization.
// ReportPath is empty unless report rendering is enabled.
type Artifacts struct {
	PromptPath     string
	GenerationPath string
	JSONPath       string
	ReportPath     string
}

// Generator runs a text-generation backend, streaming its raw output into w.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req GenerateRequest, w io.Writer) error
}

// GenerateRequest is what a Generator needs from a rendered prompt.
type GenerateRequest struct {
	Prompt      string
	PromptPath  string
	ToolDir     string
	Model       string
	Tokens      int
	ContextSize int
	SchemaPath  string
}

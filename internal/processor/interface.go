package processor

import "context"

// Processor runs the URL -> audio -> transcript -> summary pipeline.
// Each stage is also callable on its own.
type Processor interface {
	ExtractAudio(ctx context.Context, url string, opts ExtractOptions) (string, error)
	Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (string, error)
	Process(ctx context.Context, url string) (Result, error)
	ProcessList(ctx context.Context, listPath string) error
	HandleJob(ctx context.Context, listPath string) error
}

// ExtractOptions overrides the audio stage defaults.
type ExtractOptions struct {
	OutDir   string
	Filename string
}

// TranscribeOptions overrides the transcription stage defaults.
type TranscribeOptions struct {
	OutDir  string
	ToolDir string
	Model   string
}

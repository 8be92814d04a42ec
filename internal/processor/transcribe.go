package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

// Transcribe uses whisper.cpp to convert a WAV file into a plain-text transcript.
// whisper.cpp writes <audio>.txt next to the input; the result is moved to
// <out dir>/<audio stem>.txt.
func (p *implProcessor) Transcribe(ctx context.Context, audioPath string, opts TranscribeOptions) (string, error) {
	if opts.OutDir == "" {
		opts.OutDir = p.cfg.Paths.Processed
	}
	if opts.ToolDir == "" {
		opts.ToolDir = p.cfg.Whisper.Dir
	}
	if opts.Model == "" {
		opts.Model = p.cfg.Whisper.Model
	}

	p.logger.Info(ctx, "Transcribing %s...", audioPath)

	// -m: model path
	// -f: input audio file
	// --output-txt: write <input>.txt
	// -l: force language
	// -t: number of threads
	bin := filepath.Join(opts.ToolDir, p.cfg.Whisper.Binary)
	args := []string{
		"-m", filepath.Join(opts.ToolDir, "models", opts.Model),
		"-f", audioPath,
		"--output-txt",
	}
	if p.cfg.Whisper.Language != "" {
		args = append(args, "-l", p.cfg.Whisper.Language)
	}
	if p.cfg.Whisper.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(p.cfg.Whisper.Threads))
	}

	p.logger.Debug(ctx, "%s %s", bin, strings.Join(args, " "))

	if _, err := p.executor.Execute(ctx, bin, args...); err != nil {
		return "", executor.NewStageError("transcribe", err)
	}

	produced := audioPath + ".txt"
	if _, err := os.Stat(produced); err != nil {
		return "", fmt.Errorf("transcript not produced at %s: %w", produced, err)
	}

	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return "", fmt.Errorf("create transcript dir: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	dest, err := filepath.Abs(filepath.Join(opts.OutDir, stem+".txt"))
	if err != nil {
		return "", fmt.Errorf("resolve transcript path: %w", err)
	}
	if err := p.moveFile(ctx, produced, dest); err != nil {
		return "", err
	}

	p.logger.Info(ctx, "Transcription completed: %s", dest)
	return dest, nil
}

package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nguyentantai21042004/summary-flow/internal/summarizer"
)

const ManifestFile = "manifest.json"

// Result records every artifact of one pipeline run
type Result struct {
	RunID          string    `json:"run_id"`
	URL            string    `json:"url"`
	AudioPath      string    `json:"audio_path"`
	TranscriptPath string    `json:"transcript_path"`
	PromptPath     string    `json:"prompt_path"`
	GenerationPath string    `json:"generation_path"`
	SummaryPath    string    `json:"summary_path"`
	ReportPath     string    `json:"report_path,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
	ManifestPath   string    `json:"-"`
}

// Process runs the full pipeline for a single URL
// Flow: download -> transcode -> transcribe -> summarize -> manifest
func (p *implProcessor) Process(ctx context.Context, url string) (Result, error) {
	if inUse, total := p.sem.busy(); inUse == total {
		p.logger.Info(ctx, "Waiting for a free run slot (%d/%d busy)", inUse, total)
	}
	if err := p.sem.acquire(ctx); err != nil {
		return Result{}, err
	}
	defer p.sem.release()

	res := Result{
		RunID:     uuid.NewString(),
		URL:       url,
		StartedAt: time.Now(),
	}
	run := p.withLogger(p.logger.With("run_id", res.RunID))

	run.logger.Info(ctx, "Processing %s", url)

	// Step 1: Extract audio
	audioPath, err := run.ExtractAudio(ctx, url, ExtractOptions{})
	if err != nil {
		return res, fmt.Errorf("extract audio: %w", err)
	}
	res.AudioPath = audioPath

	// Step 2: Transcribe
	transcriptPath, err := run.Transcribe(ctx, audioPath, TranscribeOptions{})
	if err != nil {
		return res, fmt.Errorf("transcribe: %w", err)
	}
	res.TranscriptPath = transcriptPath

	// Step 3: Summarize
	stem := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	summaryDir, err := filepath.Abs(filepath.Join(p.cfg.Paths.Summaries, stem))
	if err != nil {
		return res, fmt.Errorf("resolve summary dir: %w", err)
	}

	run.logger.Info(ctx, "Summarizing %s...", transcriptPath)
	arts, err := p.summarizer.Summarize(ctx, summarizer.Request{
		TranscriptPath: transcriptPath,
		OutDir:         summaryDir,
	})
	res.PromptPath = arts.PromptPath
	res.GenerationPath = arts.GenerationPath
	res.SummaryPath = arts.JSONPath
	res.ReportPath = arts.ReportPath
	if err != nil {
		return res, fmt.Errorf("summarize: %w", err)
	}

	// Step 4: Manifest
	res.FinishedAt = time.Now()
	res.ManifestPath = filepath.Join(summaryDir, ManifestFile)
	if err := writeManifest(res.ManifestPath, res); err != nil {
		return res, fmt.Errorf("write manifest: %w", err)
	}

	run.logger.Info(ctx, "Successfully processed %s -> %s (%s)", url, res.SummaryPath,
		res.FinishedAt.Sub(res.StartedAt).Round(time.Second))
	return res, nil
}

func writeManifest(path string, res Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// ReadManifest loads a manifest written by Process
func ReadManifest(path string) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return Result{}, fmt.Errorf("parse manifest: %w", err)
	}
	res.ManifestPath = path
	return res, nil
}

package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing whisper model",
			mutate:  func(c *Config) { c.Whisper.Model = "" },
			wantErr: true,
		},
		{
			name:    "missing downloader",
			mutate:  func(c *Config) { c.Tools.Downloader = "" },
			wantErr: true,
		},
		{
			name:    "missing paths",
			mutate:  func(c *Config) { c.Paths = PathsConfig{} },
			wantErr: true,
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.Summarizer.Backend = "claude" },
			wantErr: true,
		},
		{
			name:    "backend is case-insensitive",
			mutate:  func(c *Config) { c.Summarizer.Backend = "Gemini" },
			wantErr: false,
		},
		{
			name:    "zero context size",
			mutate:  func(c *Config) { c.Llama.Context = 0 },
			wantErr: true,
		},
		{
			name:    "tokens overflow int32",
			mutate:  func(c *Config) { c.Llama.Tokens = math.MaxInt32 + 1 },
			wantErr: true,
		},
		{
			name:    "tokens at int32 limit",
			mutate:  func(c *Config) { c.Llama.Tokens = math.MaxInt32 },
			wantErr: false,
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "warning" },
			wantErr: true,
		},
		{
			name:    "log level is case-insensitive",
			mutate:  func(c *Config) { c.Logging.Level = "DEBUG" },
			wantErr: false,
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := &Config{
		Paths: PathsConfig{
			Audio:     "data/audio",
			Processed: "data/processed",
		},
		Tools:   ToolsConfig{Downloader: "yt-dlp", Transcoder: "ffmpeg"},
		Whisper: WhisperConfig{Dir: "whisper.cpp", Model: "m.bin"},
		Llama:   LlamaConfig{Dir: "llama.cpp", Model: "m.gguf", Tokens: 10, Context: 10},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if cfg.Paths.Summaries != filepath.Join("data", "summaries") {
		t.Errorf("Summaries = %q", cfg.Paths.Summaries)
	}
	if cfg.Summarizer.Backend != "llama" {
		t.Errorf("Backend = %q, want llama", cfg.Summarizer.Backend)
	}
	if cfg.Performance.MaxConcurrent != 1 {
		t.Errorf("MaxConcurrent = %d, want 1", cfg.Performance.MaxConcurrent)
	}
	if cfg.Whisper.Binary != "main" || cfg.Llama.Binary != "main" {
		t.Errorf("binaries = %q/%q, want main/main", cfg.Whisper.Binary, cfg.Llama.Binary)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Paths.Audio != filepath.Join("data-test", "audio") {
		t.Errorf("Audio = %q", cfg.Paths.Audio)
	}
	if cfg.Paths.Processed != filepath.Join("data-test", "processed") {
		t.Errorf("Processed = %q", cfg.Paths.Processed)
	}
	if cfg.Llama.Tokens != 2448 || cfg.Llama.Context != 2048 {
		t.Errorf("Tokens/Context = %d/%d", cfg.Llama.Tokens, cfg.Llama.Context)
	}
	if got := cfg.WhisperBinary(); got != filepath.Join("whisper.cpp", "main") {
		t.Errorf("WhisperBinary() = %q", got)
	}
	if got := cfg.LlamaBinary(); got != filepath.Join("llama.cpp", "main") {
		t.Errorf("LlamaBinary() = %q", got)
	}
}

func TestLoad(t *testing.T) {
	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	content := `
paths:
  audio: "data/audio"
  processed: "data/processed"

whisper:
  model: "ggml-small.en.bin"
  language: "en"
  threads: 4

llama:
  tokens: 512

summarizer:
  backend: "openai"
  strict_markers: true

network:
  timeout: "30s"

logging:
  level: "debug"
  format: "json"
`

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Whisper.Model != "ggml-small.en.bin" {
		t.Errorf("Whisper.Model = %v, want %v", cfg.Whisper.Model, "ggml-small.en.bin")
	}
	if cfg.Whisper.Dir != "whisper.cpp" {
		t.Errorf("Whisper.Dir = %v, want default whisper.cpp", cfg.Whisper.Dir)
	}
	if cfg.Llama.Tokens != 512 || cfg.Llama.Context != 2048 {
		t.Errorf("Tokens/Context = %d/%d, want 512/2048", cfg.Llama.Tokens, cfg.Llama.Context)
	}
	if cfg.Summarizer.Backend != "openai" || !cfg.Summarizer.StrictMarkers {
		t.Errorf("Summarizer = %+v", cfg.Summarizer)
	}
	if cfg.Network.Timeout != 30*time.Second {
		t.Errorf("Network.Timeout = %v, want 30s", cfg.Network.Timeout)
	}
	if cfg.Paths.Summaries != filepath.Join("data-test", "summaries") {
		t.Errorf("Summaries = %v", cfg.Paths.Summaries)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.Llama.Model != DefaultLlamaModel {
		t.Errorf("Llama.Model = %q, want %q", cfg.Llama.Model, DefaultLlamaModel)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("paths: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadOrDefault(path); err == nil {
		t.Error("LoadOrDefault() should fail on malformed YAML")
	}
}

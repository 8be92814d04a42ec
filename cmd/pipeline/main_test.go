package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&app{})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{name: "json summary", file: "summary_generation.json", content: `{"features":["search"],"target_user":"designers"}`},
		{name: "transcript", file: "talk.txt", content: "hello\nhello\nworld\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := filepath.Join(dir, tt.file)
			if err := os.WriteFile(in, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			out := filepath.Join(dir, tt.name+".docx")

			stdout, err := execute(t, "report", in, "-o", out)
			if err != nil {
				t.Fatalf("report error = %v", err)
			}
			if strings.TrimSpace(stdout) != out {
				t.Errorf("stdout = %q, want %q", stdout, out)
			}
			if info, err := os.Stat(out); err != nil || info.Size() == 0 {
				t.Errorf("report not written: %v", err)
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "run without urls", args: []string{"run"}, wantErr: "provide at least one URL"},
		{name: "explicit missing env", args: []string{"report", "x.json", "-e", filepath.Join(dir, "missing.env")}, wantErr: "load env file"},
		{name: "explicit missing config", args: []string{"report", "x.json", "-c", filepath.Join(dir, "missing.yaml")}, wantErr: "load config"},
		{name: "invalid json report", args: []string{"report", writeTemp(t, dir, "bad.json", "{oops")}, wantErr: "write report"},
		{name: "transcribe needs a file", args: []string{"transcribe"}, wantErr: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestPreflightRunsBeforeStages(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeTemp(t, dir, "config.yaml", `
tools:
  downloader: summary-flow-missing-downloader
  downloader_install_url: https://example.com/install
`)
	audio := writeTemp(t, dir, "clip.wav", "")
	transcript := writeTemp(t, dir, "clip.txt", "hello")

	tests := []struct {
		name string
		args []string
	}{
		{name: "run", args: []string{"run", "https://example.com/v"}},
		{name: "extract", args: []string{"extract", "https://example.com/v"}},
		{name: "transcribe", args: []string{"transcribe", audio}},
		{name: "summarize", args: []string{"summarize", transcript, "-o", filepath.Join(dir, "out")}},
		{name: "check", args: []string{"check"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, append(tt.args, "-c", cfgPath)...)
			if err == nil {
				t.Fatal("expected preflight error, got nil")
			}
			for _, want := range []string{"summary-flow-missing-downloader not found", "https://example.com/install"} {
				if !strings.Contains(err.Error(), want) {
					t.Errorf("error = %q, want it to contain %q", err, want)
				}
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Errorf("summarize ran a stage despite the failed check: %v", err)
	}

	// report renders files only and skips the check
	out := filepath.Join(dir, "clip.docx")
	if _, err := execute(t, "report", transcript, "-o", out, "-c", cfgPath); err != nil {
		t.Errorf("report error = %v", err)
	}
}

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

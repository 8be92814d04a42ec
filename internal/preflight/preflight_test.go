package preflight

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

func TestCheckInstall(t *testing.T) {
	exec := executor.New()

	t.Run("present tool", func(t *testing.T) {
		path, err := CheckInstall(exec, "sh", "https://example.com/sh")
		if err != nil {
			t.Fatalf("CheckInstall() error = %v", err)
		}
		if path == "" || !filepath.IsAbs(path) {
			t.Errorf("CheckInstall() = %q, want absolute path", path)
		}
	})

	t.Run("missing tool", func(t *testing.T) {
		const url = "https://example.com/install-guide"
		_, err := CheckInstall(exec, "summary-flow-missing-tool", url)

		var nf *ToolNotFoundError
		if !errors.As(err, &nf) {
			t.Fatalf("CheckInstall() error = %v, want *ToolNotFoundError", err)
		}
		if !strings.Contains(err.Error(), url) {
			t.Errorf("error %q should contain install URL", err.Error())
		}
		if nf.Err == nil {
			t.Error("ToolNotFoundError should carry the lookup error")
		}
	})
}

func TestCheckLogsAndStops(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "info", "text")

	resolved, err := Check(context.Background(), executor.New(), log,
		Requirement{Name: "sh", InstallURL: "https://example.com/sh"},
		Requirement{Name: "summary-flow-missing-tool", InstallURL: "https://example.com/missing"},
	)
	if err == nil {
		t.Fatal("Check() should fail when a tool is missing")
	}
	if resolved != nil {
		t.Errorf("Check() resolved = %v, want nil on failure", resolved)
	}
	if !strings.Contains(buf.String(), "https://example.com/missing") {
		t.Errorf("failure should be logged, got:\n%s", buf.String())
	}
}

func TestCheckResolvesAll(t *testing.T) {
	log := logger.NewWithWriter(&bytes.Buffer{}, "info", "text")
	resolved, err := Check(context.Background(), executor.New(), log,
		Requirement{Name: "sh", InstallURL: "https://example.com/sh"},
	)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if resolved["sh"] == "" {
		t.Errorf("resolved = %v, want sh entry", resolved)
	}
}

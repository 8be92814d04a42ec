// Package preflight verifies that the external tools the pipeline shells out to
// are resolvable before any stage runs.
package preflight

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

// Requirement names an executable and where to find install instructions for it.
type Requirement struct {
	Name       string
	InstallURL string
}

// ToolNotFoundError is returned when a required executable cannot be resolved.
type ToolNotFoundError struct {
	Name       string
	InstallURL string
	Err        error
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("%s not found. Please install %s by following the instructions at: %s", e.Name, e.Name, e.InstallURL)
}

func (e *ToolNotFoundError) Unwrap() error { return e.Err }

// Resolved maps a requirement name to its absolute path.
type Resolved map[string]string

// CheckInstall resolves a single executable on PATH.
func CheckInstall(exec executor.Executor, name, installURL string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", &ToolNotFoundError{Name: name, InstallURL: installURL, Err: err}
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// Check resolves every requirement, logging and returning the first failure.
func Check(ctx context.Context, exec executor.Executor, log logger.Logger, reqs ...Requirement) (Resolved, error) {
	resolved := make(Resolved, len(reqs))
	for _, req := range reqs {
		path, err := CheckInstall(exec, req.Name, req.InstallURL)
		if err != nil {
			log.Error(ctx, "An error occurred: %v", err)
			return nil, err
		}
		log.Debug(ctx, "Resolved %s: %s", req.Name, path)
		resolved[req.Name] = path
	}
	return resolved, nil
}

package executor

import (
	"context"
	"io"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	ExecuteTo(ctx context.Context, w io.Writer, name string, args ...string) error
	LookPath(name string) (string, error)
}

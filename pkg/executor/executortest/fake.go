// Package executortest provides an in-memory executor.Executor for tests.
package executortest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

var errNotFound = errors.New("executable file not found in $PATH")

// Handler simulates one external command. Output written to stdout is returned
// to the caller.
type Handler func(ctx context.Context, args []string, stdout io.Writer) error

// Call records a single invocation.
type Call struct {
	Name string
	Args []string
}

// Fake dispatches commands to registered handlers by exact name.
type Fake struct {
	mu       sync.Mutex
	handlers map[string]Handler
	paths    map[string]string
	calls    []Call
}

var _ executor.Executor = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		handlers: make(map[string]Handler),
		paths:    make(map[string]string),
	}
}

// Handle registers h for commands invoked as name.
func (f *Fake) Handle(name string, h Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[name] = h
}

// SetPath makes LookPath(name) resolve to path.
func (f *Fake) SetPath(name, path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths[name] = path
}

func (f *Fake) Execute(ctx context.Context, name string, args ...string) (string, error) {
	var buf bytes.Buffer
	err := f.run(ctx, &buf, name, args)
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (f *Fake) ExecuteTo(ctx context.Context, w io.Writer, name string, args ...string) error {
	return f.run(ctx, w, name, args)
}

func (f *Fake) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.paths[name]; ok {
		return p, nil
	}
	return "", fmt.Errorf("exec: %q: %w", name, errNotFound)
}

// Calls returns every recorded invocation in order.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns the recorded invocations of name.
func (f *Fake) CallsTo(name string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *Fake) run(ctx context.Context, w io.Writer, name string, args []string) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	h, ok := f.handlers[name]
	f.mu.Unlock()

	if !ok {
		return &executor.CommandError{Name: name, ExitCode: -1, Err: errNotFound}
	}
	return h(ctx, args, w)
}

// Fail builds the error a command exiting with code and stderr would produce.
func Fail(name string, code int, stderr string) error {
	return &executor.CommandError{
		Name:     name,
		ExitCode: code,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", code),
	}
}

// Arg returns the value following flag in args, or "" when absent.
func Arg(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// HasFlag reports whether flag appears in args.
func HasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

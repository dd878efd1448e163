package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// DefaultCurlBinary is looked up on PATH when no binary is configured.
const DefaultCurlBinary = "curl"

// Executor performs a transfer for the given curl arguments and returns
// curl's captured standard output.
type Executor interface {
	Execute(ctx context.Context, args []string) (string, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, args []string) (string, error)

func (f ExecutorFunc) Execute(ctx context.Context, args []string) (string, error) {
	return f(ctx, args)
}

// TransferError is returned when curl could not be started or exited with a
// non-zero status.
type TransferError struct {
	ExitCode int // -1 when curl never ran or was interrupted
	Stderr   string
	Err      error
}

func (e *TransferError) Error() string {
	if e.ExitCode < 0 {
		return fmt.Sprintf("transfer failed: %v", e.Err)
	}
	if e.Stderr != "" {
		return fmt.Sprintf("curl exited with code %d: %s", e.ExitCode, e.Stderr)
	}
	return fmt.Sprintf("curl exited with code %d", e.ExitCode)
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func (e *TransferError) Is(target error) bool {
	return target == ErrTransfer
}

// Retryable reports whether the failure is a connection-level problem that
// may go away on a second attempt.
func (e *TransferError) Retryable() bool {
	switch e.ExitCode {
	case 7, // failed to connect
		28, // operation timed out
		52, // empty reply
		55, // send failure
		56: // receive failure
		return true
	}
	return false
}

// CurlExecutor runs the curl binary as a subprocess.
type CurlExecutor struct {
	Binary string
	Env    []string
}

func NewCurlExecutor(binary string) *CurlExecutor {
	if binary == "" {
		binary = DefaultCurlBinary
	}
	return &CurlExecutor{Binary: binary}
}

func (e *CurlExecutor) Execute(ctx context.Context, args []string) (string, error) {
	binary := e.Binary
	if binary == "" {
		binary = DefaultCurlBinary
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if len(e.Env) > 0 {
		cmd.Env = e.Env
	}

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", &TransferError{ExitCode: -1, Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &TransferError{
				ExitCode: exitErr.ExitCode(),
				Stderr:   strings.TrimSpace(stderr.String()),
				Err:      err,
			}
		}
		return "", &TransferError{ExitCode: -1, Err: err}
	}
	return stdout.String(), nil
}

// StaticExecutor returns canned output and records the arguments it was
// called with.
type StaticExecutor struct {
	Output string
	Err    error

	mu    sync.Mutex
	calls [][]string
}

func NewStaticExecutor(output string) *StaticExecutor {
	return &StaticExecutor{Output: output}
}

func (e *StaticExecutor) Execute(ctx context.Context, args []string) (string, error) {
	e.mu.Lock()
	e.calls = append(e.calls, append([]string(nil), args...))
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &TransferError{ExitCode: -1, Err: err}
	}
	if e.Err != nil {
		return "", e.Err
	}
	return e.Output, nil
}

// Calls returns the argument lists received so far.
func (e *StaticExecutor) Calls() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]string(nil), e.calls...)
}

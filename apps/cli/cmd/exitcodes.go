package cmd

import (
	"context"
	"errors"

	"github.com/abdul-hamid-achik/curlite/packages/http"
)

// Exit codes for curlite CLI
const (
	// ExitSuccess indicates the transfer completed
	ExitSuccess = 0

	// ExitHTTPError indicates an error status with --raise, or a generic failure
	ExitHTTPError = 1

	// ExitMalformedResponse indicates curl output without a status line
	ExitMalformedResponse = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitTransferError indicates curl could not complete the transfer
	ExitTransferError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for err. Reported errors were
// already written by a formatter.
type exitError struct {
	code     int
	err      error
	reported bool
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func usageError(err error) error {
	return &exitError{code: ExitUsageError, err: err}
}

func configError(err error) error {
	return &exitError{code: ExitConfigError, err: err}
}

func reported(err error) error {
	return &exitError{code: exitCodeFor(err), err: err, reported: true}
}

// exitCodeFor maps a failure to its exit code.
func exitCodeFor(err error) int {
	var statusErr http.HTTPStatusError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &statusErr):
		return ExitHTTPError
	case errors.Is(err, http.ErrMalformedResponse):
		return ExitMalformedResponse
	case errors.Is(err, http.ErrTransfer),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return ExitTransferError
	default:
		return ExitHTTPError
	}
}

// exitCode is the process exit code for an error returned by the root
// command. Errors cobra raises itself are usage errors.
func exitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *exitError
	if errors.As(err, &exitErr) {
		return exitErr.code
	}
	return ExitUsageError
}

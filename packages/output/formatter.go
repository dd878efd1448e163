package output

import (
	"errors"
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/curlite/packages/history"
	"github.com/abdul-hamid-achik/curlite/packages/http"
)

// Formatter writes curlite results in one output format.
type Formatter interface {
	FormatResponse(resp *http.Response) error
	FormatError(err error) error
	FormatHistory(entries []*history.Entry) error
}

// New returns the formatter for name ("console" or "json").
func New(name string, w io.Writer, verbose, noColor bool) (Formatter, error) {
	switch name {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(w), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", name)
	}
}

// errorKind names the failure category for err.
func errorKind(err error) string {
	var statusErr http.HTTPStatusError
	var schemaErr *http.SchemaError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.Class().String()
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.Is(err, http.ErrMalformedResponse):
		return "malformed response"
	case errors.Is(err, http.ErrInvalidJSON):
		return "invalid json"
	case errors.Is(err, http.ErrTransfer):
		return "transfer"
	default:
		return "error"
	}
}

func asStatusError(err error) (*http.StatusError, bool) {
	var statusErr http.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.Details(), true
	}
	return nil, false
}

package http

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedResponse matches every *MalformedResponseError.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInvalidJSON matches every *JSONDecodeError.
	ErrInvalidJSON = errors.New("invalid JSON body")
	// ErrHTTPStatus matches the errors returned by RaiseForStatus.
	ErrHTTPStatus = errors.New("http status error")
	// ErrTransfer matches every *TransferError.
	ErrTransfer = errors.New("transfer failed")
)

// MalformedResponseError is returned when raw transfer output has no usable
// status line.
type MalformedResponseError struct {
	Reason string
	Line   string
}

func (e *MalformedResponseError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("malformed response: %s: %q", e.Reason, e.Line)
	}
	return "malformed response: " + e.Reason
}

func (e *MalformedResponseError) Is(target error) bool {
	return target == ErrMalformedResponse
}

// JSONDecodeError is returned by Response.JSON when the body is not valid
// JSON. Err holds the decoder's error.
type JSONDecodeError struct {
	Body string
	Err  error
}

func (e *JSONDecodeError) Error() string {
	return fmt.Sprintf("invalid JSON body: %v", e.Err)
}

func (e *JSONDecodeError) Unwrap() error {
	return e.Err
}

func (e *JSONDecodeError) Is(target error) bool {
	return target == ErrInvalidJSON
}

// HTTPStatusError is implemented by InformationalError, ClientError and
// ServerError.
type HTTPStatusError interface {
	error
	Class() StatusClass
	Details() *StatusError
}

// StatusError carries what a caller needs to report a failed response.
type StatusError struct {
	URL        string
	StatusCode int
	Reason     string
	Content    string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%d %s: %s", e.StatusCode, label(ClassOf(e.StatusCode)), e.Reason)
	if e.URL != "" {
		msg += " for url: " + e.URL
	}
	return msg
}

func (e *StatusError) Is(target error) bool {
	return target == ErrHTTPStatus
}

func (e *StatusError) Details() *StatusError {
	return e
}

func label(c StatusClass) string {
	words := strings.Fields(c.String())
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	s := strings.Join(words, " ")
	if !strings.HasSuffix(s, "Error") {
		s += " Error"
	}
	return s
}

// InformationalError is returned by RaiseForStatus for 1xx responses.
type InformationalError struct{ StatusError }

func (e *InformationalError) Class() StatusClass { return StatusClassInformational }

// ClientError is returned by RaiseForStatus for 4xx responses.
type ClientError struct{ StatusError }

func (e *ClientError) Class() StatusClass { return StatusClassClientError }

// ServerError is returned by RaiseForStatus for 5xx responses.
type ServerError struct{ StatusError }

func (e *ServerError) Class() StatusClass { return StatusClassServerError }

// SchemaError lists the JSON Schema violations found in a response body.
type SchemaError struct {
	Violations []string
}

func (e *SchemaError) Error() string {
	return "schema validation failed: " + strings.Join(e.Violations, "; ")
}

var (
	errNotJSON      = errors.New("body is not a JSON document")
	errTrailingData = errors.New("invalid character after top-level value")
)

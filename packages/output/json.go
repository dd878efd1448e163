package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/abdul-hamid-achik/curlite/packages/history"
	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/tidwall/gjson"
)

// JSONResponse is the JSON rendering of a response
type JSONResponse struct {
	URL        string            `json:"url"`
	Proto      string            `json:"proto"`
	StatusCode int               `json:"statusCode"`
	Reason     string            `json:"reason"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	JSON       json.RawMessage   `json:"json,omitempty"` // Body again, when it is valid JSON
	DurationMs int64             `json:"durationMs"`
	RequestID  string            `json:"requestId,omitempty"`
}

// JSONError is the JSON rendering of a failure
type JSONError struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	StatusCode int    `json:"statusCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Body       string `json:"body,omitempty"`
}

// JSONHistoryEntry is the JSON rendering of a recorded transfer
type JSONHistoryEntry struct {
	ID         string  `json:"id"`
	RequestID  string  `json:"requestId,omitempty"`
	Method     string  `json:"method"`
	URL        string  `json:"url"`
	StatusCode int     `json:"statusCode,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	BodySize   int     `json:"bodySize"`
	Duration   float64 `json:"duration"` // milliseconds
	Error      string  `json:"error,omitempty"`
	Time       string  `json:"time"`
}

type JSONFormatter struct {
	writer io.Writer
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{writer: w}
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (f *JSONFormatter) FormatResponse(resp *http.Response) error {
	out := JSONResponse{
		URL:        resp.URL(),
		Proto:      resp.Proto(),
		StatusCode: resp.StatusCode(),
		Reason:     resp.Reason(),
		Headers:    resp.Headers(),
		Body:       resp.Text(),
		DurationMs: resp.DurationMs(),
		RequestID:  resp.RequestID(),
	}
	if gjson.Valid(out.Body) {
		out.JSON = json.RawMessage(out.Body)
	}
	return f.encode(out)
}

func (f *JSONFormatter) FormatError(err error) error {
	out := JSONError{
		Error: err.Error(),
		Kind:  errorKind(err),
	}
	if statusErr, ok := asStatusError(err); ok {
		out.StatusCode = statusErr.StatusCode
		out.Reason = statusErr.Reason
		out.Body = statusErr.Content
	}
	return f.encode(out)
}

func (f *JSONFormatter) FormatHistory(entries []*history.Entry) error {
	out := make([]JSONHistoryEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, JSONHistoryEntry{
			ID:         e.ID,
			RequestID:  e.RequestID,
			Method:     e.Method,
			URL:        e.URL,
			StatusCode: e.StatusCode,
			Reason:     e.Reason,
			BodySize:   e.BodySize,
			Duration:   float64(e.Duration) / float64(time.Millisecond),
			Error:      e.Error,
			Time:       e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return f.encode(out)
}

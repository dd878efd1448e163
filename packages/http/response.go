package http

import (
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

// Response is the caller-facing view of a completed transfer.
type Response struct {
	parsed    *ParsedResponse
	duration  time.Duration
	requestID string
}

// NewResponse parses raw curl output for url. A parse failure yields no
// response.
func NewResponse(url, raw string) (*Response, error) {
	parsed, err := ParseResponse(url, raw)
	if err != nil {
		return nil, err
	}
	return &Response{parsed: parsed}, nil
}

func (r *Response) URL() string {
	return r.parsed.URL
}

func (r *Response) Proto() string {
	return r.parsed.Proto
}

func (r *Response) StatusCode() int {
	return r.parsed.StatusCode
}

func (r *Response) Reason() string {
	return r.parsed.Reason
}

// Content returns the body exactly as received.
func (r *Response) Content() string {
	return r.parsed.Body
}

// Text returns the body exactly as received.
func (r *Response) Text() string {
	return r.parsed.Body
}

// Headers returns a copy of the header mapping.
func (r *Response) Headers() map[string]string {
	headers := make(map[string]string, len(r.parsed.Headers))
	for k, v := range r.parsed.Headers {
		headers[k] = v
	}
	return headers
}

// HeaderNames returns header names in the order they were received.
func (r *Response) HeaderNames() []string {
	return append([]string(nil), r.parsed.HeaderOrder...)
}

// Header looks a header up by name, ignoring case.
func (r *Response) Header(key string) string {
	if v, ok := r.parsed.Headers[key]; ok {
		return v
	}
	for k, v := range r.parsed.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) ContentType() string {
	return r.Header("Content-Type")
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.ContentType(), "json")
}

// Duration is the wall time of the transfer, when the response came from a
// Client.
func (r *Response) Duration() time.Duration {
	return r.duration
}

// RequestID is the X-Request-Id the client sent, if any.
func (r *Response) RequestID() string {
	return r.requestID
}

// JSON decodes the body regardless of the declared content type. An empty
// body is not valid JSON. Integers become int64, or *big.Int when they do not
// fit; other numbers become float64.
func (r *Response) JSON() (any, error) {
	dec := json.NewDecoder(strings.NewReader(r.parsed.Body))
	dec.UseNumber()

	var result any
	if err := dec.Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &JSONDecodeError{Body: r.parsed.Body, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &JSONDecodeError{Body: r.parsed.Body, Err: errTrailingData}
	}
	return convertNumbers(result), nil
}

func convertNumbers(v any) any {
	switch v := v.(type) {
	case map[string]any:
		for k, item := range v {
			v[k] = convertNumbers(item)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = convertNumbers(item)
		}
		return v
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if !strings.ContainsAny(v.String(), ".eE") {
			if n, ok := new(big.Int).SetString(v.String(), 10); ok {
				return n
			}
		}
		f, _ := v.Float64()
		return f
	default:
		return v
	}
}

// DecodeJSON decodes the body into v.
func (r *Response) DecodeJSON(v any) error {
	if err := json.Unmarshal([]byte(r.parsed.Body), v); err != nil {
		return &JSONDecodeError{Body: r.parsed.Body, Err: err}
	}
	return nil
}

// Get runs a gjson path query against the body.
func (r *Response) Get(path string) gjson.Result {
	return gjson.Get(r.parsed.Body, path)
}

// ValidateSchema checks the body against a JSON Schema document.
func (r *Response) ValidateSchema(schema []byte) error {
	if !gjson.Valid(r.parsed.Body) {
		return &JSONDecodeError{Body: r.parsed.Body, Err: errNotJSON}
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schema),
		gojsonschema.NewStringLoader(r.parsed.Body),
	)
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return &SchemaError{Violations: violations}
}

func (r *Response) StatusClass() StatusClass {
	return ClassOf(r.parsed.StatusCode)
}

func (r *Response) IsSuccess() bool {
	return r.StatusClass() == StatusClassSuccess
}

func (r *Response) IsRedirect() bool {
	return r.StatusClass() == StatusClassRedirection
}

func (r *Response) IsClientError() bool {
	return r.StatusClass() == StatusClassClientError
}

func (r *Response) IsServerError() bool {
	return r.StatusClass() == StatusClassServerError
}

// RaiseForStatus returns an HTTPStatusError for informational, client error
// and server error responses and nil otherwise.
func (r *Response) RaiseForStatus() error {
	details := StatusError{
		URL:        r.parsed.URL,
		StatusCode: r.parsed.StatusCode,
		Reason:     r.parsed.Reason,
		Content:    r.parsed.Body,
	}
	switch r.StatusClass() {
	case StatusClassInformational:
		return &InformationalError{details}
	case StatusClassClientError:
		return &ClientError{details}
	case StatusClassServerError:
		return &ServerError{details}
	default:
		return nil
	}
}

func (r *Response) DurationMs() int64 {
	return r.duration.Milliseconds()
}

package curl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/curlite/packages/http"
)

func TestParse_SimpleGet(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("expected method GET, got %s", req.Method)
	}
	if req.URL != "https://api.example.com/users" {
		t.Errorf("expected URL https://api.example.com/users, got %s", req.URL)
	}
}

func TestParse_PostWithData(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -X POST https://api.example.com/users -H "Content-Type: application/json" -d '{"name":"John"}'`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "POST" {
		t.Errorf("expected method POST, got %s", req.Method)
	}
	if req.Body != `{"name":"John"}` {
		t.Errorf("expected body {\"name\":\"John\"}, got %s", req.Body)
	}
	if req.Headers["Content-Type"] != "application/json" {
		t.Errorf("explicit Content-Type was replaced: %s", req.Headers["Content-Type"])
	}
}

func TestParse_WithHeaders(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -H "Content-Type: application/json" -H "Authorization: Bearer token123" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Headers["Content-Type"] != "application/json" {
		t.Errorf("expected Content-Type: application/json, got %s", req.Headers["Content-Type"])
	}
	if req.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("expected Authorization: Bearer token123, got %s", req.Headers["Authorization"])
	}
}

func TestParse_WithBasicAuth(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -u admin:password123 https://api.example.com/admin`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Auth == nil || req.Auth.Type != http.AuthBasic {
		t.Fatalf("expected basic auth, got %+v", req.Auth)
	}
	if strings.Join(req.Auth.Params, ":") != "admin:password123" {
		t.Errorf("expected admin:password123, got %v", req.Auth.Params)
	}
}

func TestParse_WithDigestAuth(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl --digest -u admin:pw https://api.example.com/admin`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Auth == nil || req.Auth.Type != http.AuthDigest {
		t.Fatalf("expected digest auth, got %+v", req.Auth)
	}
}

func TestParse_ImplicitPost(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -d "name=John" -d "age=30" https://api.example.com/users`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "POST" {
		t.Errorf("expected implicit POST method, got %s", req.Method)
	}
	if req.Body != "name=John&age=30" {
		t.Errorf("expected joined form body, got %s", req.Body)
	}
	if req.Headers["Content-Type"] != "application/x-www-form-urlencoded" {
		t.Errorf("expected form Content-Type, got %s", req.Headers["Content-Type"])
	}
}

func TestParse_GetWithDataAsQuery(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -G -d key=value -d page=2 https://api.example.com/search`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if req.Body != "" {
		t.Errorf("expected empty body, got %s", req.Body)
	}
	if got := req.BuildURL(); got != "https://api.example.com/search?key=value&page=2" {
		t.Errorf("unexpected URL %s", got)
	}
}

func TestParse_Flags(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -s -k -L --max-redirs 3 -m 2.5 -x http://proxy:3128 -A "agent/1.0" -e https://ref.example.com -b "a=1" --compressed https://api.example.com`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !req.Insecure {
		t.Error("expected insecure to be true")
	}
	if !req.FollowRedirects {
		t.Error("expected follow redirects to be true")
	}
	if req.MaxRedirects != 3 {
		t.Errorf("expected max redirects 3, got %d", req.MaxRedirects)
	}
	if req.Timeout != 2500*time.Millisecond {
		t.Errorf("expected timeout 2.5s, got %s", req.Timeout)
	}
	if req.Proxy != "http://proxy:3128" {
		t.Errorf("unexpected proxy %s", req.Proxy)
	}
	if req.UserAgent != "agent/1.0" {
		t.Errorf("unexpected user agent %s", req.UserAgent)
	}
	if req.Headers["Referer"] != "https://ref.example.com" || req.Headers["Cookie"] != "a=1" {
		t.Errorf("unexpected headers %v", req.Headers)
	}
}

func TestParse_HeadAndURLFlag(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse(`curl -I --url https://api.example.com/health`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "HEAD" || req.URL != "https://api.example.com/health" {
		t.Errorf("unexpected request %s %s", req.Method, req.URL)
	}
}

func TestParse_LineContinuation(t *testing.T) {
	converter := NewConverter()

	req, err := converter.Parse("curl -X PUT \\\n  -H 'X-A: 1' \\\n  https://api.example.com/items/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Method != "PUT" || req.Headers["X-A"] != "1" || req.URL != "https://api.example.com/items/1" {
		t.Errorf("unexpected request %+v", req)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  string
		opts []Option
		want string
	}{
		{"bare curl", "curl", nil, "no URL specified"},
		{"no url", "curl -X GET", nil, "no URL found"},
		{"missing value", "curl https://a.example.com -H", nil, "missing value for -H"},
		{"unterminated quote", `curl -d "abc https://a.example.com`, nil, "unterminated quote"},
		{"bad max time", "curl -m soon https://a.example.com", nil, "invalid -m value"},
		{"strict unknown flag", "curl --http2 https://a.example.com", []Option{WithStrict(true)}, "unsupported flag --http2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConverter(tt.opts...).Parse(tt.cmd)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_UnknownFlagSkipped(t *testing.T) {
	req, err := NewConverter().Parse(`curl --retry 3 https://api.example.com`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.URL != "https://api.example.com" {
		t.Errorf("unexpected URL %s", req.URL)
	}
}

func TestParseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.sh")
	content := `# health check
curl https://api.example.com/health

curl -X POST \
  -d 'a=1' \
  https://api.example.com/items
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	requests, err := NewConverter().ParseFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(requests))
	}
	if requests[1].Method != "POST" || requests[1].Body != "a=1" {
		t.Errorf("unexpected second request %+v", requests[1])
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{
			input:    `-X POST -d "hello world"`,
			expected: []string{"-X", "POST", "-d", "hello world"},
		},
		{
			input:    `-H 'Content-Type: application/json'`,
			expected: []string{"-H", "Content-Type: application/json"},
		},
		{
			input:    `-d '{"key": "value"}'`,
			expected: []string{"-d", `{"key": "value"}`},
		},
		{
			input:    `-d '' https://a.example.com`,
			expected: []string{"-d", "", "https://a.example.com"},
		},
		{
			input:    `-d 'it\s' -H X-A:\ 1`,
			expected: []string{"-d", `it\s`, "-H", "X-A: 1"},
		},
	}

	for _, tt := range tests {
		tokens, err := tokenize(tt.input)
		if err != nil {
			t.Errorf("tokenize(%q): unexpected error %v", tt.input, err)
			continue
		}
		if len(tokens) != len(tt.expected) {
			t.Errorf("tokenize(%q): got %d tokens, expected %d", tt.input, len(tokens), len(tt.expected))
			continue
		}
		for i, tok := range tokens {
			if tok != tt.expected[i] {
				t.Errorf("tokenize(%q)[%d]: got %q, expected %q", tt.input, i, tok, tt.expected[i])
			}
		}
	}
}

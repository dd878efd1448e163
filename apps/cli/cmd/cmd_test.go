package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type result struct {
	stdout string
	stderr string
	err    error
}

func execute(t *testing.T, exe http.Executor, args ...string) result {
	t.Helper()

	executor = exe
	t.Cleanup(func() { executor = nil })
	t.Setenv("HOME", t.TempDir())

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--no-color"}, args...))

	err := root.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func joinedArgs(t *testing.T, exe *http.StaticExecutor) string {
	t.Helper()
	calls := exe.Calls()
	require.Len(t, calls, 1)
	return strings.Join(calls[0], " ")
}

func TestGet(t *testing.T) {
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\nContent-Type: text/plain\n\nHello, World!")

	res := execute(t, exe, "get", "http://example.com")

	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "HTTP/1.1 200 OK")
	assert.Contains(t, res.stdout, "Hello, World!")
	assert.Contains(t, joinedArgs(t, exe), "-X GET")
}

func TestMethodShorthands(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"post", "-X POST"},
		{"put", "-X PUT"},
		{"patch", "-X PATCH"},
		{"delete", "-X DELETE"},
		{"head", "--head"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
			res := execute(t, exe, tt.command, "http://example.com")
			require.NoError(t, res.err)
			assert.Contains(t, joinedArgs(t, exe), tt.want)
		})
	}
}

func TestRequest_Flags(t *testing.T) {
	exe := http.NewStaticExecutor("HTTP/1.1 201 Created\n\n")

	res := execute(t, exe, "request", "-X", "post", "http://example.com/items",
		"-H", "Content-Type: application/json",
		"-d", `{"a":1}`,
		"-q", "page=2",
		"--timeout", "5s",
		"-k",
		"-u", "user:pass",
	)

	require.NoError(t, res.err)
	args := joinedArgs(t, exe)
	assert.Contains(t, args, "-X POST")
	assert.Contains(t, args, "-H Content-Type: application/json")
	assert.Contains(t, args, `--data-raw {"a":1}`)
	assert.Contains(t, args, "--max-time 5")
	assert.Contains(t, args, "-k")
	assert.Contains(t, args, "-u user:pass")
	assert.Contains(t, args, "--url http://example.com/items?page=2")
}

func TestRequest_DataFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"from":"file"}`), 0o644))
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")

	res := execute(t, exe, "post", "http://example.com", "-d", "@"+path)

	require.NoError(t, res.err)
	assert.Contains(t, joinedArgs(t, exe), `--data-raw {"from":"file"}`)
}

func TestRequest_RequestID(t *testing.T) {
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")

	res := execute(t, exe, "get", "http://example.com", "--request-id", "-v")

	require.NoError(t, res.err)
	assert.Contains(t, joinedArgs(t, exe), "-H X-Request-Id: ")
	assert.Contains(t, res.stdout, "request id ")
}

func TestRaise(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		raise    bool
		wantCode int
		wantErr  string
	}{
		{"not found without raise", "HTTP/1.1 404 Not Found\n\nmissing", false, ExitSuccess, ""},
		{"not found with raise", "HTTP/1.1 404 Not Found\n\nmissing", true, ExitHTTPError, "client error: 404 Client Error: Not Found for url: http://example.com"},
		{"server error with raise", "HTTP/1.1 500 Internal Server Error\n\n", true, ExitHTTPError, "server error: 500 Server Error: Internal Server Error for url: http://example.com"},
		{"informational with raise", "HTTP/1.1 101 Switching Protocols\n\n", true, ExitHTTPError, "informational"},
		{"redirect with raise", "HTTP/1.1 302 Found\nLocation: /x\n\n", true, ExitSuccess, ""},
		{"success with raise", "HTTP/1.1 200 OK\n\nok", true, ExitSuccess, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := []string{"get", "http://example.com"}
			if tt.raise {
				args = append(args, "--raise")
			}

			res := execute(t, http.NewStaticExecutor(tt.output), args...)

			assert.Equal(t, tt.wantCode, exitCode(res.err))
			if tt.wantErr != "" {
				assert.Contains(t, res.stderr, tt.wantErr)
			}
		})
	}
}

func TestFailures(t *testing.T) {
	t.Run("malformed response", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor("garbage"), "get", "http://example.com")
		assert.Equal(t, ExitMalformedResponse, exitCode(res.err))
		assert.Contains(t, res.stderr, "malformed response")
	})

	t.Run("transfer error", func(t *testing.T) {
		exe := &http.StaticExecutor{Err: &http.TransferError{ExitCode: 6, Stderr: "curl: (6) Could not resolve host"}}
		res := execute(t, exe, "get", "http://example.invalid")
		assert.Equal(t, ExitTransferError, exitCode(res.err))
		assert.Contains(t, res.stderr, "Could not resolve host")
	})

	t.Run("invalid url", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "ftp://example.com")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})

	t.Run("invalid header", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "http://example.com", "-H", "no-colon")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})

	t.Run("invalid query", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "http://example.com", "-q", "novalue")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})

	t.Run("missing url", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})

	t.Run("unknown flag", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "http://example.com", "--bogus")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})

	t.Run("missing config", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "http://example.com", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Equal(t, ExitConfigError, exitCode(res.err))
	})

	t.Run("unknown output format", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "http://example.com", "-o", "xml")
		assert.Equal(t, ExitConfigError, exitCode(res.err))
	})
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curlite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("userAgent: curlite-test\nheaders:\n  X-Team: core\nfollowRedirects: false\n"), 0o644))
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")

	res := execute(t, exe, "get", "http://example.com", "--config", path)

	require.NoError(t, res.err)
	args := joinedArgs(t, exe)
	assert.Contains(t, args, "-A curlite-test")
	assert.Contains(t, args, "-H X-Team: core")
	assert.NotContains(t, args, "-L")
}

func TestRedirectFlags(t *testing.T) {
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
	res := execute(t, exe, "get", "http://example.com")
	require.NoError(t, res.err)
	assert.NotContains(t, exe.Calls()[0], "-L")

	exe = http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
	res = execute(t, exe, "get", "http://example.com", "-L")
	require.NoError(t, res.err)
	assert.Contains(t, exe.Calls()[0], "-L")

	path := filepath.Join(t.TempDir(), "curlite.yaml")
	require.NoError(t, os.WriteFile(path, []byte("followRedirects: true\n"), 0o644))

	exe = http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
	res = execute(t, exe, "get", "http://example.com", "--config", path)
	require.NoError(t, res.err)
	assert.Contains(t, exe.Calls()[0], "-L")

	exe = http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
	res = execute(t, exe, "get", "http://example.com", "--config", path, "--no-location")
	require.NoError(t, res.err)
	assert.NotContains(t, exe.Calls()[0], "-L")
}

func TestJSONOutput(t *testing.T) {
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\nContent-Type: application/json\n\n{\"id\":7}")

	res := execute(t, exe, "get", "http://example.com", "-o", "json")

	require.NoError(t, res.err)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, float64(200), out["statusCode"])
	assert.Equal(t, "OK", out["reason"])
	assert.Equal(t, map[string]any{"id": float64(7)}, out["json"])
}

func TestSelect(t *testing.T) {
	exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n{\"user\":{\"name\":\"John\",\"tags\":[\"a\",\"b\"]}}")

	res := execute(t, exe, "get", "http://example.com", "--select", "user.name")
	require.NoError(t, res.err)
	assert.Equal(t, "John\n", res.stdout)

	res = execute(t, exe, "get", "http://example.com", "--select", "user.tags")
	require.NoError(t, res.err)
	assert.Equal(t, "[\"a\",\"b\"]\n", res.stdout)

	res = execute(t, exe, "get", "http://example.com", "--select", "user.missing")
	assert.Equal(t, ExitHTTPError, exitCode(res.err))
}

func TestSchema(t *testing.T) {
	schema := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(schema, []byte(`{"type":"object","required":["id"]}`), 0o644))

	res := execute(t, http.NewStaticExecutor("HTTP/1.1 200 OK\n\n{\"id\":1}"), "get", "http://example.com", "--schema", schema)
	require.NoError(t, res.err)

	res = execute(t, http.NewStaticExecutor("HTTP/1.1 200 OK\n\n{\"name\":\"x\"}"), "get", "http://example.com", "--schema", schema)
	assert.Equal(t, ExitHTTPError, exitCode(res.err))
	assert.Contains(t, res.stderr, "schema")
}

func TestReplay(t *testing.T) {
	t.Run("single command string", func(t *testing.T) {
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
		res := execute(t, exe, "replay", `curl -X PUT -H 'Accept: application/json' https://api.example.com/users/1`)
		require.NoError(t, res.err)
		args := joinedArgs(t, exe)
		assert.Contains(t, args, "-X PUT")
		assert.Contains(t, args, "-H Accept: application/json")
		assert.Contains(t, args, "--url https://api.example.com/users/1")
	})

	t.Run("split arguments", func(t *testing.T) {
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
		res := execute(t, exe, "replay", "--", "curl", "-H", "X-Quote: it's", "https://api.example.com")
		require.NoError(t, res.err)
		assert.Contains(t, joinedArgs(t, exe), "-H X-Quote: it's")
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "requests.sh")
		content := "# smoke\ncurl https://api.example.com/a\n\ncurl -X DELETE \\\n  https://api.example.com/b\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")

		res := execute(t, exe, "replay", "--file", path)

		require.NoError(t, res.err)
		assert.Len(t, exe.Calls(), 2)
		assert.NotContains(t, res.stderr, "transfers")
	})

	t.Run("file summary when verbose", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "requests.sh")
		require.NoError(t, os.WriteFile(path, []byte("curl https://api.example.com/a\ncurl https://api.example.com/b\n"), 0o644))

		res := execute(t, http.NewStaticExecutor("HTTP/1.1 200 OK\n\n"), "replay", "--file", path, "-v")

		require.NoError(t, res.err)
		assert.Contains(t, res.stderr, "2 transfers, 0 failed")
	})

	t.Run("no command", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "replay")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})

	t.Run("unterminated quote", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "replay", `curl -H "Accept: x https://api.example.com`)
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})
}

func TestVariables(t *testing.T) {
	t.Run("var flag", func(t *testing.T) {
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
		res := execute(t, exe, "get", "https://{{host}}/users/{{id}}", "--var", "host=api.example.com", "--var", "id=7", "-H", "X-Trace: {{id}}")
		require.NoError(t, res.err)
		args := joinedArgs(t, exe)
		assert.Contains(t, args, "--url https://api.example.com/users/7")
		assert.Contains(t, args, "-H X-Trace: 7")
	})

	t.Run("env file with flag precedence", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte("host=file.example.com\ntoken=abc\n"), 0o644))
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")

		res := execute(t, exe, "get", "https://{{host}}", "--env-file", path, "--var", "host=flag.example.com", "--bearer", "{{token}}")

		require.NoError(t, res.err)
		args := joinedArgs(t, exe)
		assert.Contains(t, args, "--url https://flag.example.com")
		assert.Contains(t, args, "Authorization: Bearer abc")
	})

	t.Run("replay file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "requests.sh")
		require.NoError(t, os.WriteFile(path, []byte("curl -X POST https://{{host}}/items -d '{\"at\":\"{{date()}}\"}'\n"), 0o644))
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")

		res := execute(t, exe, "replay", "--file", path, "--var", "host=api.example.com")

		require.NoError(t, res.err)
		args := joinedArgs(t, exe)
		assert.Contains(t, args, "--url https://api.example.com/items")
		assert.NotContains(t, args, "{{date()}}")
	})

	t.Run("unresolved", func(t *testing.T) {
		exe := http.NewStaticExecutor("HTTP/1.1 200 OK\n\n")
		res := execute(t, exe, "get", "https://{{host}}/")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
		assert.ErrorContains(t, res.err, "unresolved variables: host")
		assert.Empty(t, exe.Calls())
	})

	t.Run("invalid var", func(t *testing.T) {
		res := execute(t, http.NewStaticExecutor(""), "get", "https://example.com", "--var", "novalue")
		assert.Equal(t, ExitUsageError, exitCode(res.err))
	})
}

func TestHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	exe := http.NewStaticExecutor("HTTP/1.1 201 Created\n\ncreated")

	res := execute(t, exe, "post", "http://example.com/items", "--history", "--history-file", path)
	require.NoError(t, res.err)

	res = execute(t, nil, "history", "--history-file", path, "-o", "json")
	require.NoError(t, res.err)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "POST", entries[0]["method"])
	assert.Equal(t, "http://example.com/items", entries[0]["url"])
	assert.Equal(t, float64(201), entries[0]["statusCode"])

	res = execute(t, nil, "history", "--history-file", path, "--clear")
	require.NoError(t, res.err)
	assert.Equal(t, "Removed 1 transfers\n", res.stdout)

	res = execute(t, nil, "history", "--history-file", path)
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "no transfers recorded")
}

func TestVersion(t *testing.T) {
	res := execute(t, nil, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "curlite version dev")
}

func TestJoinCommand(t *testing.T) {
	assert.Equal(t, "curl -s http://example.com", joinCommand([]string{"curl -s http://example.com"}))
	assert.Equal(t, `curl '-H' 'X-Quote: it'\''s' 'http://example.com'`, joinCommand([]string{"curl", "-H", "X-Quote: it's", "http://example.com"}))
	assert.Equal(t, `curl '-I' 'http://example.com'`, joinCommand([]string{"-I", "http://example.com"}))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, exitCode(nil))
	assert.Equal(t, ExitUsageError, exitCode(errors.New("unknown command")))
	assert.Equal(t, ExitConfigError, exitCode(configError(errors.New("bad"))))
	assert.Equal(t, ExitTransferError, exitCode(reported(context.DeadlineExceeded)))
	assert.Equal(t, ExitMalformedResponse, exitCode(reported(&http.MalformedResponseError{Reason: "no status line found"})))
}

package env

import (
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/google/uuid"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Func generates a value for a {{name()}} placeholder.
type Func func() string

var builtins = map[string]Func{
	"uuid":        uuid.NewString,
	"timestamp":   func() string { return strconv.FormatInt(time.Now().Unix(), 10) },
	"timestampMs": func() string { return strconv.FormatInt(time.Now().UnixMilli(), 10) },
	"now":         func() string { return time.Now().UTC().Format(time.RFC3339) },
	"date":        func() string { return time.Now().Format("2006-01-02") },
}

// UnresolvedError lists placeholders that had no value.
type UnresolvedError struct {
	Names []string
}

func (e *UnresolvedError) Error() string {
	return "unresolved variables: " + strings.Join(e.Names, ", ")
}

// Resolver expands placeholders. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{variables: make(map[string]string)}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variables[name]
	return v, ok
}

// Resolve expands every placeholder in input. Unknown placeholders are
// left as written and reported in the returned error.
func (r *Resolver) Resolve(input string) (string, error) {
	var missing []string
	out := r.expand(input, &missing)
	if len(missing) > 0 {
		return out, &UnresolvedError{Names: missing}
	}
	return out, nil
}

func (r *Resolver) expand(input string, missing *[]string) string {
	if !strings.Contains(input, "{{") {
		return input
	}
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if name, ok := strings.CutPrefix(expr, "$"); ok {
			if val, ok := os.LookupEnv(name); ok {
				return val
			}
			*missing = append(*missing, expr)
			return match
		}

		if name, ok := strings.CutSuffix(expr, "()"); ok {
			if fn, ok := builtins[name]; ok {
				return fn()
			}
			*missing = append(*missing, expr)
			return match
		}

		if val, ok := r.GetVariable(expr); ok {
			return val
		}
		*missing = append(*missing, expr)
		return match
	})
}

// ResolveRequest expands placeholders in the URL, query parameters,
// headers, body and auth parameters of req, in place.
func (r *Resolver) ResolveRequest(req *http.Request) error {
	var missing []string

	req.URL = r.expand(req.URL, &missing)
	req.Body = r.expand(req.Body, &missing)
	req.Proxy = r.expand(req.Proxy, &missing)
	req.UserAgent = r.expand(req.UserAgent, &missing)

	for k, v := range req.Headers {
		req.Headers[k] = r.expand(v, &missing)
	}
	for k, values := range req.QueryParams {
		for i, v := range values {
			values[i] = r.expand(v, &missing)
		}
		req.QueryParams[k] = values
	}
	if req.Auth != nil {
		for i, p := range req.Auth.Params {
			req.Auth.Params[i] = r.expand(p, &missing)
		}
	}

	if len(missing) > 0 {
		slices.Sort(missing)
		return &UnresolvedError{Names: slices.Compact(missing)}
	}
	return nil
}

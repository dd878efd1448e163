package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/curlite/packages/core/config"
	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/spf13/cobra"
)

// requestFlags are the per-request flags shared by request and the
// method shorthands.
type requestFlags struct {
	method     string
	headers    []string
	data       string
	query      []string
	timeout    time.Duration
	insecure   bool
	location   bool
	noLocation bool
	proxy      string
	retries    int
	rate       float64
	requestID  bool
	user       string
	bearer     string
	schema     string
	selectPath string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringArrayVarP(&f.headers, "header", "H", nil, "Request header as \"Name: value\" (repeatable)")
	flags.StringVarP(&f.data, "data", "d", "", "Request body, or @file to read it from a file")
	flags.StringArrayVarP(&f.query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	flags.DurationVar(&f.timeout, "timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flags.BoolVarP(&f.insecure, "insecure", "k", getEnvBool("CURLITE_INSECURE", false), "Disable SSL certificate validation (env: CURLITE_INSECURE)")
	flags.BoolVarP(&f.location, "location", "L", false, "Follow redirects")
	flags.BoolVar(&f.noLocation, "no-location", false, "Do not follow redirects, even when the config enables it")
	flags.StringVar(&f.proxy, "proxy", getEnvString("CURLITE_PROXY", ""), "Proxy URL for the request (env: CURLITE_PROXY)")
	flags.IntVar(&f.retries, "retries", getEnvInt("CURLITE_RETRIES", 0), "Retries for connection failures and timeouts (env: CURLITE_RETRIES)")
	flags.Float64Var(&f.rate, "rate", getEnvFloat("CURLITE_RATE", 0), "Maximum transfers per second (env: CURLITE_RATE)")
	flags.BoolVar(&f.requestID, "request-id", false, "Send a generated X-Request-Id header")
	flags.StringVarP(&f.user, "user", "u", "", "Basic auth credentials as user:password")
	flags.StringVar(&f.bearer, "bearer", getEnvString("CURLITE_BEARER", ""), "Bearer token (env: CURLITE_BEARER)")
	flags.StringVar(&f.schema, "schema", "", "JSON Schema file the response body must satisfy")
	flags.StringVar(&f.selectPath, "select", "", "Print only the value at this JSON path (e.g., data.items.0.id)")
}

func (f *requestFlags) overrides() *config.Config {
	c := &config.Config{
		Proxy:     f.proxy,
		Retries:   f.retries,
		RateLimit: f.rate,
	}
	if f.insecure {
		c.ValidateSSL = config.BoolPtr(false)
	}
	switch {
	case f.noLocation:
		c.FollowRedirects = config.BoolPtr(false)
	case f.location:
		c.FollowRedirects = config.BoolPtr(true)
	}
	if f.requestID {
		c.RequestID = config.BoolPtr(true)
	}
	return c
}

// build turns the flags into a request for method and rawURL.
func (f *requestFlags) build(method, rawURL string) (*http.Request, error) {
	req := http.NewRequest(strings.ToUpper(method), rawURL)

	for _, h := range f.headers {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q, expected \"Name: value\"", h)
		}
		req.SetHeader(name, strings.TrimSpace(value))
	}

	for _, q := range f.query {
		key, value, ok := strings.Cut(q, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid query parameter %q, expected key=value", q)
		}
		req.SetQueryParam(key, value)
	}

	if f.data != "" {
		body := f.data
		if path, ok := strings.CutPrefix(body, "@"); ok {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read body: %w", err)
			}
			body = string(data)
		}
		req.SetBody(body)
	}

	if f.timeout > 0 {
		req.SetTimeout(f.timeout)
	}

	switch {
	case f.bearer != "":
		req.SetAuth(http.AuthBearer, f.bearer)
	case f.user != "":
		user, password, _ := strings.Cut(f.user, ":")
		req.SetAuth(http.AuthBasic, user, password)
	}

	return req, nil
}

func runRequest(cmd *cobra.Command, g *globalFlags, f *requestFlags, method, rawURL string) error {
	req, err := f.build(method, rawURL)
	if err != nil {
		return usageError(err)
	}

	var schema []byte
	if f.schema != "" {
		schema, err = os.ReadFile(f.schema)
		if err != nil {
			return usageError(fmt.Errorf("read schema: %w", err))
		}
	}

	s, err := newSession(cmd, g, f.overrides())
	if err != nil {
		return err
	}
	defer s.Close()

	s.schema = schema
	s.selectPath = f.selectPath
	return s.send(cmd.Context(), req)
}

func newRequestCmd(g *globalFlags) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "request <url>",
		Short: "Send an HTTP request",
		Long: `Send an HTTP request through curl and print the response.

Examples:
  curlite request https://httpbin.org/get
  curlite request -X POST https://httpbin.org/post -d @body.json -H "Content-Type: application/json"
  curlite request -X DELETE https://api.example.com/users/1 --raise`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, g, f, f.method, args[0])
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.method, "request", "X", "GET", "HTTP method")
	return cmd
}

// newMethodCmd builds the shorthand command for method, e.g. "curlite post".
func newMethodCmd(g *globalFlags, method string) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " <url>",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequest(cmd, g, f, method, args[0])
		},
	}
	f.register(cmd)
	return cmd
}

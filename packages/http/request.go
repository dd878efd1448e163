package http

import (
	"fmt"
	neturl "net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

type AuthType int

const (
	AuthNone AuthType = iota
	AuthBasic
	AuthBearer
	AuthDigest
	AuthAWS
)

// Auth describes request credentials. Params depend on Type:
// basic and digest take user and password, bearer takes a token,
// aws takes access key, secret key, region and service.
type Auth struct {
	Type   AuthType
	Params []string
}

type Request struct {
	Method          string
	URL             string
	Headers         map[string]string
	QueryParams     neturl.Values
	Body            string
	Timeout         time.Duration
	FollowRedirects bool
	MaxRedirects    int
	Insecure        bool
	Proxy           string
	UserAgent       string
	Auth            *Auth
}

func NewRequest(method, requestURL string) *Request {
	return &Request{
		Method:      method,
		URL:         requestURL,
		Headers:     make(map[string]string),
		QueryParams: make(neturl.Values),
	}
}

func (r *Request) SetHeader(key, value string) *Request {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
	return r
}

func (r *Request) SetBody(body string) *Request {
	r.Body = body
	return r
}

func (r *Request) SetTimeout(d time.Duration) *Request {
	r.Timeout = d
	return r
}

func (r *Request) SetQueryParam(key, value string) *Request {
	if r.QueryParams == nil {
		r.QueryParams = make(neturl.Values)
	}
	r.QueryParams.Add(key, value)
	return r
}

func (r *Request) SetAuth(t AuthType, params ...string) *Request {
	r.Auth = &Auth{Type: t, Params: params}
	return r
}

// BuildURL returns URL with QueryParams merged into its query string.
func (r *Request) BuildURL() string {
	if len(r.QueryParams) == 0 {
		return r.URL
	}

	u, err := neturl.Parse(r.URL)
	if err != nil {
		return r.URL
	}

	q := u.Query()
	for k, values := range r.QueryParams {
		for _, v := range values {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (r *Request) method() string {
	if r.Method == "" {
		return "GET"
	}
	return strings.ToUpper(r.Method)
}

// Args renders the request as curl command-line arguments. The output
// always includes response headers (-i) so it can be parsed.
func (r *Request) Args() ([]string, error) {
	if err := ValidateURL(r.URL); err != nil {
		return nil, err
	}

	args := []string{"-s", "-S", "-i"}

	if m := r.method(); m == "HEAD" {
		args = append(args, "--head")
	} else {
		args = append(args, "-X", m)
	}

	names := make([]string, 0, len(r.Headers))
	for k := range r.Headers {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		args = append(args, "-H", k+": "+r.Headers[k])
	}

	authArgs, err := r.authArgs()
	if err != nil {
		return nil, err
	}
	args = append(args, authArgs...)

	if r.Body != "" {
		args = append(args, "--data-raw", r.Body)
	}
	if r.Timeout > 0 {
		args = append(args, "--max-time", strconv.FormatFloat(r.Timeout.Seconds(), 'f', -1, 64))
	}
	if r.FollowRedirects {
		args = append(args, "-L")
		if r.MaxRedirects > 0 {
			args = append(args, "--max-redirs", strconv.Itoa(r.MaxRedirects))
		}
	}
	if r.Insecure {
		args = append(args, "-k")
	}
	if r.Proxy != "" {
		args = append(args, "-x", r.Proxy)
	}
	if r.UserAgent != "" {
		args = append(args, "-A", r.UserAgent)
	}

	args = append(args, "--url", r.BuildURL())
	return args, nil
}

func (r *Request) authArgs() ([]string, error) {
	if r.Auth == nil || r.Auth.Type == AuthNone {
		return nil, nil
	}

	p := r.Auth.Params
	switch r.Auth.Type {
	case AuthBasic:
		if len(p) >= 2 {
			return []string{"-u", p[0] + ":" + p[1]}, nil
		}
	case AuthBearer:
		if len(p) >= 1 {
			return []string{"-H", "Authorization: Bearer " + p[0]}, nil
		}
	case AuthDigest:
		if len(p) >= 2 {
			return []string{"--digest", "-u", p[0] + ":" + p[1]}, nil
		}
	case AuthAWS:
		if len(p) >= 4 {
			return []string{
				"--aws-sigv4", fmt.Sprintf("aws:amz:%s:%s", p[2], p[3]),
				"-u", p[0] + ":" + p[1],
			}, nil
		}
	}
	return nil, fmt.Errorf("incomplete credentials for auth type %d", r.Auth.Type)
}

// ValidateURL checks that a URL is well-formed and uses an allowed scheme
func ValidateURL(rawURL string) error {
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}

	return nil
}

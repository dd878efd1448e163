// Package curl turns curl command lines into curlite requests.
package curl

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/curlite/packages/http"
)

// Converter parses curl command lines.
type Converter struct {
	strict bool
}

// Option is a functional option for Converter.
type Option func(*Converter)

// WithStrict makes unknown flags an error instead of skipping them.
func WithStrict(strict bool) Option {
	return func(c *Converter) {
		c.strict = strict
	}
}

// NewConverter creates a new curl converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ignoredFlags carry no value and do not change the request.
var ignoredFlags = map[string]bool{
	"-s": true, "--silent": true,
	"-S": true, "--show-error": true,
	"-i": true, "--include": true,
	"-v": true, "--verbose": true,
	"--compressed": true,
	"-f":           true, "--fail": true,
}

// ParseFile reads curl commands from a file, one per line, honouring
// backslash line continuations and skipping blank lines and # comments.
func (c *Converter) ParseFile(path string) ([]*http.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var commands []string
	var currentCmd strings.Builder
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if currentCmd.Len() == 0 && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}

		if strings.HasSuffix(line, "\\") {
			currentCmd.WriteString(strings.TrimSuffix(line, "\\"))
			currentCmd.WriteString(" ")
			continue
		}

		currentCmd.WriteString(line)
		commands = append(commands, currentCmd.String())
		currentCmd.Reset()
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if currentCmd.Len() > 0 {
		commands = append(commands, currentCmd.String())
	}

	requests := make([]*http.Request, 0, len(commands))
	for i, cmd := range commands {
		req, err := c.Parse(cmd)
		if err != nil {
			return nil, fmt.Errorf("failed to convert command %d: %w", i+1, err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// Parse parses a curl command string into a Request.
func (c *Converter) Parse(curlCmd string) (*http.Request, error) {
	curlCmd = strings.TrimSpace(curlCmd)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")

	if curlCmd == "curl" {
		return nil, fmt.Errorf("no URL specified")
	}
	curlCmd = strings.TrimPrefix(curlCmd, "curl ")

	tokens, err := tokenize(curlCmd)
	if err != nil {
		return nil, err
	}

	req := http.NewRequest("", "")
	var data []string
	var user string
	digest, asQuery, explicitMethod := false, false, false

	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		value := func() (string, error) {
			if i+1 >= len(tokens) {
				return "", fmt.Errorf("missing value for %s", token)
			}
			i++
			return tokens[i], nil
		}

		switch {
		case token == "-X" || token == "--request":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.Method = strings.ToUpper(v)
			explicitMethod = true

		case token == "-H" || token == "--header":
			v, err := value()
			if err != nil {
				return nil, err
			}
			if key, val, ok := strings.Cut(v, ":"); ok {
				req.SetHeader(strings.TrimSpace(key), strings.TrimSpace(val))
			}

		case token == "-d" || token == "--data" || token == "--data-raw" ||
			token == "--data-binary" || token == "--data-ascii":
			v, err := value()
			if err != nil {
				return nil, err
			}
			data = append(data, v)

		case token == "-u" || token == "--user":
			v, err := value()
			if err != nil {
				return nil, err
			}
			user = v

		case token == "--digest":
			digest = true

		case token == "--oauth2-bearer":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.SetAuth(http.AuthBearer, v)

		case token == "-k" || token == "--insecure":
			req.Insecure = true

		case token == "-L" || token == "--location":
			req.FollowRedirects = true

		case token == "--max-redirs":
			v, err := value()
			if err != nil {
				return nil, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("invalid --max-redirs value %q", v)
			}
			req.MaxRedirects = n

		case token == "-m" || token == "--max-time":
			v, err := value()
			if err != nil {
				return nil, err
			}
			secs, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q", token, v)
			}
			req.Timeout = time.Duration(secs * float64(time.Second))

		case token == "-x" || token == "--proxy":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.Proxy = v

		case token == "-A" || token == "--user-agent":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.UserAgent = v

		case token == "-e" || token == "--referer":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.SetHeader("Referer", v)

		case token == "-b" || token == "--cookie":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.SetHeader("Cookie", v)

		case token == "-G" || token == "--get":
			asQuery = true

		case token == "-I" || token == "--head":
			req.Method = "HEAD"
			explicitMethod = true

		case token == "--url":
			v, err := value()
			if err != nil {
				return nil, err
			}
			req.URL = v

		case ignoredFlags[token]:

		case strings.HasPrefix(token, "-"):
			if c.strict {
				return nil, fmt.Errorf("unsupported flag %s", token)
			}
			// Skip unknown flags with potential values
			if i+1 < len(tokens) && !strings.HasPrefix(tokens[i+1], "-") && !isURL(tokens[i+1]) {
				i++
			}

		default:
			if req.URL == "" && isURL(token) {
				req.URL = token
			}
		}
	}

	if req.URL == "" {
		return nil, fmt.Errorf("no URL found in curl command")
	}

	if user != "" {
		name, password, _ := strings.Cut(user, ":")
		if digest {
			req.SetAuth(http.AuthDigest, name, password)
		} else {
			req.SetAuth(http.AuthBasic, name, password)
		}
	}

	if len(data) > 0 {
		joined := strings.Join(data, "&")
		if asQuery {
			for _, pair := range strings.Split(joined, "&") {
				key, val, _ := strings.Cut(pair, "=")
				req.SetQueryParam(key, val)
			}
		} else {
			req.Body = joined
			// curl sends data as POST unless told otherwise
			if !explicitMethod {
				req.Method = "POST"
			}
			if _, ok := req.Headers["Content-Type"]; !ok {
				req.SetHeader("Content-Type", "application/x-www-form-urlencoded")
			}
		}
	}

	if req.Method == "" {
		req.Method = "GET"
	}

	return req, nil
}

// tokenize splits a curl command into tokens, respecting quotes.
func tokenize(cmd string) ([]string, error) {
	var tokens []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false
	escaped := false
	started := false

	for _, r := range cmd {
		if escaped {
			current.WriteRune(r)
			escaped = false
			continue
		}

		switch r {
		case '\\':
			if inSingleQuote {
				current.WriteRune(r)
			} else {
				escaped = true
				started = true
			}
		case '\'':
			if !inDoubleQuote {
				inSingleQuote = !inSingleQuote
				started = true
			} else {
				current.WriteRune(r)
			}
		case '"':
			if !inSingleQuote {
				inDoubleQuote = !inDoubleQuote
				started = true
			} else {
				current.WriteRune(r)
			}
		case ' ', '\t', '\n':
			if inSingleQuote || inDoubleQuote {
				current.WriteRune(r)
			} else if started {
				tokens = append(tokens, current.String())
				current.Reset()
				started = false
			}
		default:
			current.WriteRune(r)
			started = true
		}
	}

	if inSingleQuote || inDoubleQuote {
		return nil, fmt.Errorf("unterminated quote in curl command")
	}

	if started {
		tokens = append(tokens, current.String())
	}

	return tokens, nil
}

// isURL checks if a string looks like a URL.
func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

package http

import (
	"regexp"
	"strconv"
	"strings"
)

var statusLinePattern = regexp.MustCompile(`^HTTP/(\d+(?:\.\d+)?)[ \t]+(\d+)(?:[ \t](.*))?$`)

// ParsedResponse is the structured form of one curl transfer output.
// It is never modified after Parse returns it.
type ParsedResponse struct {
	URL        string
	Proto      string
	StatusCode int
	Reason     string
	// Headers holds the last value seen for each name, keys as received.
	Headers map[string]string
	// HeaderOrder lists header names in order of first appearance.
	HeaderOrder []string
	Body        string
}

// Parse builds a ParsedResponse from raw `curl -i` output.
//
// When the output holds several status blocks (redirects, proxy CONNECT,
// 100 Continue, auth challenges), the final block is used. Parsing only moves
// past a block that is interim and is directly followed by another status
// line. Once a final block is reached everything after its blank line is the
// body, even text that looks like a status line.
func Parse(raw string) (*ParsedResponse, error) {
	pos, ok := findStatusLine(raw)
	if !ok {
		return nil, &MalformedResponseError{Reason: "no status line found"}
	}

	for {
		line, next := readLine(raw, pos)
		resp, err := parseStatusLine(line)
		block := resp
		if err != nil {
			block = &ParsedResponse{Headers: make(map[string]string)}
		}

		bodyStart, closed := readHeaders(raw, next, block)
		if closed && bodyStart < len(raw) && (err != nil || block.interim()) {
			if peek, _ := readLine(raw, bodyStart); statusLinePattern.MatchString(peek) {
				pos = bodyStart
				continue
			}
		}
		if err != nil {
			return nil, err
		}
		if closed {
			resp.Body = raw[bodyStart:]
		}
		return resp, nil
	}
}

// interim reports whether curl may print another response after this one.
func (p *ParsedResponse) interim() bool {
	switch {
	case p.StatusCode < 200:
		return true
	case p.StatusCode >= 300 && p.StatusCode < 400:
		return p.hasHeader("Location")
	case p.StatusCode == 401:
		return p.hasHeader("WWW-Authenticate")
	case p.StatusCode == 407:
		return p.hasHeader("Proxy-Authenticate")
	case p.StatusCode == 200:
		return strings.EqualFold(p.Reason, "Connection established")
	}
	return false
}

func (p *ParsedResponse) hasHeader(name string) bool {
	for k := range p.Headers {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// ParseResponse is Parse with the request URL attached to the result.
func ParseResponse(url, raw string) (*ParsedResponse, error) {
	resp, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	resp.URL = url
	return resp, nil
}

func findStatusLine(raw string) (int, bool) {
	for pos := 0; pos < len(raw); {
		line, next := readLine(raw, pos)
		if statusLinePattern.MatchString(line) {
			return pos, true
		}
		pos = next
	}
	return 0, false
}

func parseStatusLine(line string) (*ParsedResponse, error) {
	m := statusLinePattern.FindStringSubmatch(line)
	if m == nil {
		return nil, &MalformedResponseError{Reason: "invalid status line", Line: line}
	}
	if len(m[2]) != 3 {
		return nil, &MalformedResponseError{Reason: "status code must have 3 digits", Line: line}
	}
	code, err := strconv.Atoi(m[2])
	if err != nil || code < 100 || code > 599 {
		return nil, &MalformedResponseError{Reason: "status code out of range", Line: line}
	}
	return &ParsedResponse{
		Proto:      "HTTP/" + m[1],
		StatusCode: code,
		Reason:     m[3],
		Headers:    make(map[string]string),
	}, nil
}

// readHeaders consumes header lines starting at pos into resp. It returns the
// offset just past the terminating blank line and whether one was found.
func readHeaders(raw string, pos int, resp *ParsedResponse) (int, bool) {
	for pos < len(raw) {
		line, next := readLine(raw, pos)
		pos = next
		if line == "" {
			return pos, true
		}
		name, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := resp.Headers[name]; !seen {
			resp.HeaderOrder = append(resp.HeaderOrder, name)
		}
		resp.Headers[name] = strings.TrimSpace(value)
	}
	return pos, false
}

// readLine returns the line starting at pos without its line ending and the
// offset of the following line.
func readLine(raw string, pos int) (string, int) {
	end := strings.IndexByte(raw[pos:], '\n')
	if end < 0 {
		return strings.TrimSuffix(raw[pos:], "\r"), len(raw)
	}
	return strings.TrimSuffix(raw[pos:pos+end], "\r"), pos + end + 1
}

package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/abdul-hamid-achik/curlite/packages/history"
	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/fatih/color"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusColor(code int) *color.Color {
	switch http.ClassOf(code) {
	case http.StatusClassSuccess:
		return color.New(color.FgGreen, color.Bold)
	case http.StatusClassRedirection:
		return color.New(color.FgCyan, color.Bold)
	case http.StatusClassServerError:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgYellow, color.Bold)
	}
}

func (f *ConsoleFormatter) FormatResponse(resp *http.Response) error {
	cyan := color.New(color.FgCyan).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	status := statusColor(resp.StatusCode()).Sprintf("%d %s", resp.StatusCode(), resp.Reason())
	fmt.Fprintf(f.writer, "%s %s", resp.Proto(), status)
	if resp.Duration() > 0 {
		fmt.Fprintf(f.writer, " %s", cyan(fmt.Sprintf("(%dms)", resp.DurationMs())))
	}
	fmt.Fprintln(f.writer)

	if f.verbose {
		for _, name := range resp.HeaderNames() {
			fmt.Fprintf(f.writer, "%s: %s\n", cyan(name), resp.Header(name))
		}
		if id := resp.RequestID(); id != "" {
			fmt.Fprintf(f.writer, "%s\n", faint("request id "+id))
		}
	}

	body := resp.Text()
	if body == "" {
		return nil
	}
	fmt.Fprintln(f.writer)

	if gjson.Valid(body) {
		out := pretty.Pretty([]byte(body))
		if !f.noColor && !color.NoColor {
			out = pretty.Color(out, nil)
		}
		_, err := f.writer.Write(out)
		return err
	}

	_, err := io.WriteString(f.writer, body)
	if err == nil && !strings.HasSuffix(body, "\n") {
		_, err = io.WriteString(f.writer, "\n")
	}
	return err
}

func (f *ConsoleFormatter) FormatError(err error) error {
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	_, werr := fmt.Fprintf(f.writer, "%s %s\n", red(bold(errorKind(err)+":")), err)
	if statusErr, ok := asStatusError(err); ok && f.verbose && statusErr.Content != "" {
		fmt.Fprintf(f.writer, "  %s\n", formatValue(statusErr.Content, 200))
	}
	return werr
}

func (f *ConsoleFormatter) FormatHistory(entries []*history.Entry) error {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	if len(entries) == 0 {
		_, err := fmt.Fprintln(f.writer, faint("no transfers recorded"))
		return err
	}

	for _, e := range entries {
		when := faint(e.CreatedAt.Format("2006-01-02 15:04:05"))
		if e.Failed() {
			fmt.Fprintf(f.writer, "%s %s %-6s %s %s\n", when, red("x"), e.Method, e.URL, red(e.Error))
			continue
		}
		symbol := green("✓")
		if http.ClassOf(e.StatusCode).IsError() {
			symbol = red("✗")
		}
		code := statusColor(e.StatusCode).Sprint(e.StatusCode)
		fmt.Fprintf(f.writer, "%s %s %-6s %s %s %s\n", when, symbol, e.Method, e.URL, code,
			faint(fmt.Sprintf("%dms %dB", e.Duration.Milliseconds(), e.BodySize)))
	}
	return nil
}

// formatValue truncates long values to maxLen runes for display
func formatValue(v any, maxLen int) string {
	str := fmt.Sprintf("%v", v)
	if utf8.RuneCountInString(str) <= maxLen {
		return str
	}
	runes := []rune(str)
	return string(runes[:maxLen]) + "..."
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/abdul-hamid-achik/curlite/packages/core/config"
	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

// executor replaces the curl binary when set. Tests use it to script
// transfer output.
var executor http.Executor

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	output      string
	verbose     bool
	noColor     bool
	raise       bool
	history     bool
	historyFile string
	curl        string
	logLevel    string
	vars        []string
	envFile     string
}

// overrides returns the config values the flags set explicitly.
func (g *globalFlags) overrides() *config.Config {
	c := &config.Config{
		Curl:        g.curl,
		Output:      g.output,
		HistoryPath: g.historyFile,
		LogLevel:    g.logLevel,
		EnvFile:     g.envFile,
	}
	if g.verbose {
		c.Verbose = config.BoolPtr(true)
	}
	if g.noColor {
		c.NoColor = config.BoolPtr(true)
	}
	if g.history {
		c.History = config.BoolPtr(true)
	}
	return c
}

// NewRootCmd builds the curlite command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "curlite",
		Short: "HTTP requests through curl, with a friendly response",
		Long: `curlite sends HTTP requests with the local curl binary and turns its
raw output into a structured response: status code, reason, headers,
text and JSON body.

Examples:
  curlite get https://httpbin.org/get
  curlite post https://httpbin.org/post -d '{"name":"John"}' -H "Content-Type: application/json"
  curlite request -X PATCH https://api.example.com/users/1 --raise
  curlite replay "curl -s -H 'Accept: application/json' https://api.example.com"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError(err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&g.configPath, "config", getEnvString("CURLITE_CONFIG", ""), "Path to config file (env: CURLITE_CONFIG)")
	pf.StringVarP(&g.output, "output", "o", getEnvString("CURLITE_OUTPUT", ""), "Output format: console, json (env: CURLITE_OUTPUT)")
	pf.BoolVarP(&g.verbose, "verbose", "v", getEnvBool("CURLITE_VERBOSE", false), "Show response headers and request id (env: CURLITE_VERBOSE)")
	pf.BoolVar(&g.noColor, "no-color", getEnvBool("CURLITE_NO_COLOR", os.Getenv("NO_COLOR") != ""), "Disable colored output (env: CURLITE_NO_COLOR)")
	pf.BoolVar(&g.raise, "raise", getEnvBool("CURLITE_RAISE", false), "Exit non-zero on 1xx, 4xx and 5xx responses (env: CURLITE_RAISE)")
	pf.BoolVar(&g.history, "history", getEnvBool("CURLITE_HISTORY", false), "Record transfers in the history database (env: CURLITE_HISTORY)")
	pf.StringVar(&g.historyFile, "history-file", getEnvString("CURLITE_HISTORY_FILE", ""), "Path to the history database (env: CURLITE_HISTORY_FILE)")
	pf.StringVar(&g.curl, "curl", getEnvString("CURLITE_CURL", ""), "Path to the curl binary (env: CURLITE_CURL)")
	pf.StringArrayVar(&g.vars, "var", nil, "Value for a {{name}} placeholder as name=value (repeatable)")
	pf.StringVar(&g.envFile, "env-file", getEnvString("CURLITE_ENV_FILE", ""), "Path to .env file with placeholder values (env: CURLITE_ENV_FILE)")
	pf.StringVar(&g.logLevel, "log-level", getEnvString("CURLITE_LOG_LEVEL", ""), "Log level: debug, info, warn, error (env: CURLITE_LOG_LEVEL)")

	root.AddCommand(newRequestCmd(g))
	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"} {
		root.AddCommand(newMethodCmd(g, method))
	}
	root.AddCommand(newReplayCmd(g))
	root.AddCommand(newHistoryCmd(g))
	root.AddCommand(newVersionCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

func Execute(v, bt string) {
	version = v
	buildTime = bt

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := NewRootCmd()
	err := root.ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *exitError
		if !errors.As(err, &exitErr) || !exitErr.reported {
			fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
		}
		os.Exit(exitCode(err))
	}
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

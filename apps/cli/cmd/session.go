package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/abdul-hamid-achik/curlite/packages/core/config"
	"github.com/abdul-hamid-achik/curlite/packages/core/env"
	"github.com/abdul-hamid-achik/curlite/packages/history"
	"github.com/abdul-hamid-achik/curlite/packages/http"
	"github.com/abdul-hamid-achik/curlite/packages/logger"
	"github.com/abdul-hamid-achik/curlite/packages/output"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// loadConfig reads the config file and layers flag overrides on top.
func loadConfig(g *globalFlags, overrides *config.Config) (*config.Config, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, configError(err)
	}
	vars, err := env.ParseAssignments(g.vars)
	if err != nil {
		return nil, usageError(err)
	}
	flagConfig := g.overrides()
	flagConfig.Variables = vars

	cfg = cfg.Merge(flagConfig).Merge(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, configError(err)
	}
	return cfg, nil
}

// session is everything one command invocation needs to send requests
// and render their results.
type session struct {
	config   *config.Config
	resolver *env.Resolver
	logger   *zap.Logger
	client   *http.Client
	out      output.Formatter
	errOut   output.Formatter
	store    *history.Store
	stdout   io.Writer
	raise    bool

	schema     []byte
	selectPath string
}

func newSession(cmd *cobra.Command, g *globalFlags, overrides *config.Config) (*session, error) {
	cfg, err := loadConfig(g, overrides)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat == "json")
	if err != nil {
		return nil, configError(err)
	}

	out, err := output.New(cfg.Output, cmd.OutOrStdout(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return nil, configError(err)
	}
	errOut, err := output.New(cfg.Output, cmd.ErrOrStderr(), cfg.GetVerbose(), cfg.GetNoColor())
	if err != nil {
		return nil, configError(err)
	}

	resolver := env.NewResolver()
	if cfg.EnvFile != "" {
		fileVars, err := env.LoadDotEnv(cfg.EnvFile)
		if err != nil {
			return nil, configError(err)
		}
		resolver.SetVariables(fileVars)
	}
	resolver.SetVariables(cfg.Variables)

	s := &session{
		config:   cfg,
		resolver: resolver,
		logger:   log,
		out:      out,
		errOut:   errOut,
		stdout:   cmd.OutOrStdout(),
		raise:    g.raise,
	}

	opts := append(cfg.ClientOptions(), http.WithLogger(log))
	if cfg.GetHistory() {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return nil, configError(fmt.Errorf("open history: %w", err))
		}
		s.store = store
		opts = append(opts, http.WithRecorder(store))
	}
	if executor != nil {
		opts = append(opts, http.WithExecutor(executor))
	}
	s.client = http.NewClient(opts...)

	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			s.logger.Warn("failed to close history", zap.Error(err))
		}
	}
	_ = s.logger.Sync()
}

// send expands placeholders in req, performs it and writes the response,
// or the failure, through the session formatters.
func (s *session) send(ctx context.Context, req *http.Request) error {
	if err := s.resolver.ResolveRequest(req); err != nil {
		return usageError(err)
	}
	if err := http.ValidateURL(req.URL); err != nil {
		return usageError(err)
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return s.fail(err)
	}

	if s.selectPath != "" {
		result := resp.Get(s.selectPath)
		if !result.Exists() {
			return s.fail(fmt.Errorf("path %q not found in response body", s.selectPath))
		}
		value := result.Raw
		if result.Type == gjson.String {
			value = result.String()
		}
		if _, err := fmt.Fprintln(s.stdout, value); err != nil {
			return err
		}
	} else if err := s.out.FormatResponse(resp); err != nil {
		return err
	}

	if len(s.schema) > 0 {
		if err := resp.ValidateSchema(s.schema); err != nil {
			return s.fail(err)
		}
	}

	if s.raise {
		if err := resp.RaiseForStatus(); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

func (s *session) fail(err error) error {
	if ferr := s.errOut.FormatError(err); ferr != nil {
		s.logger.Warn("failed to write error", zap.Error(ferr))
	}
	return reported(err)
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/mayankbohra/remote-ticktick-mcp/internal/config"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/instrumentation"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/logging"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/ticktick"
	"github.com/mayankbohra/remote-ticktick-mcp/internal/tokenstore"
)

// shutdownTimeout bounds the flush of metrics and traces on exit.
const shutdownTimeout = 5 * time.Second

// runtime holds everything a command needs for the lifetime of one invocation.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	provider *instrumentation.Provider
	store    *tokenstore.Store
	client   *ticktick.Client
}

// newRuntime loads the configuration and wires the client. The cached token,
// when present and seeded by the configured access token, replaces the
// configured pair so refreshed tokens survive across invocations.
func newRuntime(ctx context.Context, opts *globalOptions) (*runtime, error) {
	logger := logging.NewLogger(opts.logFormat, opts.debug)
	slog.SetDefault(logger)

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, &ticktick.Error{Kind: ticktick.KindConfiguration, Message: err.Error(), Err: err}
	}
	if cfg.Source != "" {
		logger.Debug("Loaded config file", "path", cfg.Source)
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, &ticktick.Error{Kind: ticktick.KindConfiguration, Message: err.Error(), Err: err}
	}

	rt := &runtime{cfg: cfg, logger: logger, provider: provider}
	adapter := logging.NewSlogAdapter(logger)

	tc := cfg.TickTick()
	clientOpts := []ticktick.Option{
		ticktick.WithLogger(adapter),
		ticktick.WithMetrics(provider.Metrics()),
	}

	if cfg.TokenCache {
		if cfg.TokenCachePath != "" {
			rt.store = tokenstore.New(afero.NewOsFs(), cfg.TokenCachePath)
		} else {
			rt.store = tokenstore.NewDefault()
		}

		cached, ok, err := rt.store.Load(cfg.AccessToken)
		switch {
		case err != nil:
			logger.Warn("Ignoring unreadable token cache", "path", rt.store.Path(), logging.Err(err))
		case ok:
			logger.Debug("Using cached token", "path", rt.store.Path(),
				"access_token", logging.SanitizeToken(cached.AccessToken))
			tc.AccessToken = cached.AccessToken
			if cached.RefreshToken != "" {
				tc.RefreshToken = cached.RefreshToken
			}
		}
		clientOpts = append(clientOpts, ticktick.WithTokenObserver(rt.store.Observer(cfg.AccessToken, adapter)))
	}

	rt.client, err = ticktick.NewClient(tc, clientOpts...)
	if err != nil {
		rt.shutdown()
		return nil, err
	}
	return rt, nil
}

// shutdown releases connections and flushes telemetry.
func (rt *runtime) shutdown() {
	if rt.client != nil {
		rt.client.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.provider.Shutdown(ctx); err != nil {
		rt.logger.Warn("Error during instrumentation shutdown", logging.Err(err))
	}
}

// commandFunc performs one command and returns the value to print.
type commandFunc func(ctx context.Context, rt *runtime) (interface{}, error)

// runCommand sets up the runtime, traces and measures fn, and prints its
// result or error as JSON.
func runCommand(cmd *cobra.Command, opts *globalOptions, name string, fn commandFunc) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()

	rt, err := newRuntime(ctx, opts)
	if err != nil {
		writeError(out, err)
		return &reportedError{err: err}
	}
	defer rt.shutdown()

	start := time.Now()
	ctx, span := instrumentation.StartCommandSpan(ctx, name)
	defer span.End()

	result, err := fn(ctx, rt)

	status := instrumentation.StatusSuccess
	if err != nil {
		status = instrumentation.StatusError
		instrumentation.SetSpanError(span, err)
		rt.logger.Debug("Command failed", logging.Operation(name), logging.Err(err),
			"kind", ticktick.KindOf(err).String())
	} else {
		instrumentation.SetSpanSuccess(span)
	}
	rt.provider.Metrics().RecordCommand(ctx, name, status, time.Since(start))

	if err != nil {
		writeError(out, err)
		return &reportedError{err: err}
	}
	return writeJSON(out, result)
}

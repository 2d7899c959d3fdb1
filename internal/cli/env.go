package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/roach88/opptrack/internal/audit"
	"github.com/roach88/opptrack/internal/config"
	"github.com/roach88/opptrack/internal/logging"
	"github.com/roach88/opptrack/internal/store"
)

// env is the opened runtime shared by the storage-backed commands.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	audit  *audit.Log
}

// openEnv loads configuration and opens both databases. Failures are
// command errors (exit code 2).
func openEnv(ctx context.Context, opts *RootOptions, logOut io.Writer) (*env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.StorePath != "" {
		cfg.StorePath = opts.StorePath
	}
	if opts.AuditPath != "" {
		cfg.AuditPath = opts.AuditPath
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.LogFormat, logOut)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to configure logging", err)
	}

	logger.Debug("opening store", "path", cfg.StorePath)
	st, err := store.Open(ctx, cfg.StorePath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	logger.Debug("opening audit log", "path", cfg.AuditPath)
	log, err := audit.Open(ctx, cfg.AuditPath)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to open audit log", err)
	}

	return &env{cfg: cfg, logger: logger, store: st, audit: log}, nil
}

func (e *env) Close() error {
	auditErr := e.audit.Close()
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing store", "error", err)
		return err
	}
	if auditErr != nil {
		e.logger.Error("error closing audit log", "error", auditErr)
	}
	return auditErr
}

package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sys/unix"

	"sptnr/internal/config"
	"sptnr/internal/daemon"
	"sptnr/internal/logging"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel    string
	Development bool
	// Launcher overrides the exec launcher; nil uses the sptnr binary.
	Launcher daemon.Launcher
	// Ready, when set, receives the bound address once the server listens.
	Ready func(addr string)
}

// Run starts the trigger daemon and blocks until cmdCtx is cancelled or the
// process receives SIGINT or SIGTERM. configPath is forwarded to launched
// jobs when the daemon was started from an explicit config file.
func Run(cmdCtx context.Context, cfg *config.Config, configPath string, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	if err := cfg.ValidateTrigger(); err != nil {
		return err
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := unix.Access(cfg.Paths.LogDir, unix.W_OK|unix.X_OK); err != nil {
		return fmt.Errorf("log directory %s is not writable: %w", cfg.Paths.LogDir, err)
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logPath := filepath.Join(cfg.Paths.LogDir, "sptnrd.log")
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Development:      opts.Development,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger = logging.NewComponentLogger(logger, "sptnrd")

	removed := logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "sptnr_*.log"},
	)
	if removed > 0 {
		logger.Info("pruned old run logs", logging.Int("removed", removed))
	}

	launcher := opts.Launcher
	if launcher == nil {
		binary, err := daemon.ResolveJobBinary(cfg.Web.JobBinary)
		if err != nil {
			logging.ErrorWithContext(logger, "sync job binary not found", "job_binary_missing",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "set web.job_binary or install sptnr on PATH"),
			)
			return err
		}
		execLauncher := daemon.NewExecLauncher(binary, configPath, logger)
		jobOutput, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open daemon log for job output: %w", err)
		}
		defer jobOutput.Close()
		execLauncher.SetOutput(jobOutput)
		launcher = execLauncher
		logger.Info("sync job binary resolved", logging.String("binary", binary))
	}

	d, err := daemon.New(cfg, launcher, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	if err := d.Start(signalCtx); err != nil {
		return err
	}
	defer d.Stop()

	// Only the lock holder may own the pid file.
	pidPath := filepath.Join(cfg.Paths.DataDir, "sptnrd.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)
	logStartup(logger, cfg, configPath, logPath)
	if opts.Ready != nil {
		opts.Ready(d.Addr())
	}

	<-signalCtx.Done()
	logger.Info("sptnrd shutting down")
	return nil
}

func logStartup(logger *slog.Logger, cfg *config.Config, configPath, logPath string) {
	logger.Info("configuration snapshot",
		logging.String(logging.FieldEventType, "configuration_snapshot"),
		logging.String("config_path", configPath),
		logging.String("log_dir", cfg.Paths.LogDir),
		logging.String("daemon_log", logPath),
		logging.String("processed_albums_file", cfg.Paths.ProcessedAlbumsFile),
		logging.Int("retention_days", cfg.Logging.RetentionDays),
	)
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

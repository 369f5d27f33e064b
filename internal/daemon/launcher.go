package daemon

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"sptnr/internal/config"
	"sptnr/internal/logging"
)

// Launcher starts a sync job with the given flags. It reports only spawn
// failures: the job runs detached and its outcome lands in its own run log.
type Launcher interface {
	Launch(args []string) error
}

// ExecLauncher runs the sync job binary as a detached child process.
type ExecLauncher struct {
	binary     string
	configPath string
	output     io.Writer
	logger     *slog.Logger
}

// NewExecLauncher builds a launcher for binary. A non-empty configPath is
// handed to the child through the config path environment variable so the
// job reads the same configuration as the daemon.
func NewExecLauncher(binary, configPath string, logger *slog.Logger) *ExecLauncher {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ExecLauncher{
		binary:     binary,
		configPath: configPath,
		logger:     logging.NewComponentLogger(logger, "launcher"),
	}
}

// SetOutput sends the child's stdout and stderr to w. Without it both are
// discarded, which loses anything the job prints before its run log exists.
func (l *ExecLauncher) SetOutput(w io.Writer) {
	l.output = w
}

// Launch starts the job in its own session and returns once it is spawned.
// The child is reaped in the background and its exit status logged.
func (l *ExecLauncher) Launch(args []string) error {
	if strings.TrimSpace(l.binary) == "" {
		return errors.New("sync job binary not configured")
	}
	cmd := exec.Command(l.binary, args...)
	cmd.Env = os.Environ()
	if l.configPath != "" {
		cmd.Env = append(cmd.Env, config.EnvConfigPath+"="+l.configPath)
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if l.output != nil {
		cmd.Stdout = l.output
		cmd.Stderr = l.output
	}

	started := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", l.binary, err)
	}
	pid := cmd.Process.Pid
	l.logger.Info("sync job started",
		logging.Int("pid", pid),
		logging.Strings("args", args),
	)

	go func() {
		err := cmd.Wait()
		elapsed := time.Since(started).Round(time.Second)
		if err != nil {
			var exitErr *exec.ExitError
			code := -1
			if errors.As(err, &exitErr) {
				code = exitErr.ExitCode()
			}
			logging.WarnWithContext(l.logger, "sync job failed", "sync_job_failed",
				logging.Int("pid", pid),
				logging.Int("exit_code", code),
				logging.Duration("elapsed", elapsed),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "see the newest run log, or the daemon log when the job exited before creating one"),
			)
			return
		}
		l.logger.Info("sync job finished",
			logging.Int("pid", pid),
			logging.Duration("elapsed", elapsed),
		)
	}()
	return nil
}

// ResolveJobBinary returns the sync job executable. An explicit setting wins;
// otherwise an sptnr binary next to the running executable is preferred over
// one found on PATH.
func ResolveJobBinary(configured string) (string, error) {
	if configured = strings.TrimSpace(configured); configured != "" {
		expanded, err := config.ExpandPath(configured)
		if err != nil {
			return "", err
		}
		if err := unix.Access(expanded, unix.X_OK); err != nil {
			return "", fmt.Errorf("web.job_binary %s is not executable: %w", expanded, err)
		}
		return expanded, nil
	}
	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "sptnr")
		if unix.Access(sibling, unix.X_OK) == nil {
			return sibling, nil
		}
	}
	path, err := exec.LookPath("sptnr")
	if err != nil {
		return "", fmt.Errorf("locate sptnr binary (set web.job_binary): %w", err)
	}
	return path, nil
}

package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/gofrs/flock"

	"sptnr/internal/config"
	"sptnr/internal/logging"
)

// Daemon owns the trigger server lifecycle and enforces single-instance
// execution per data directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	server *Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon serving cfg and launching jobs through launcher.
func New(cfg *config.Config, launcher Launcher, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || launcher == nil || logger == nil {
		return nil, errors.New("daemon requires config, launcher, and logger")
	}
	server, err := NewServer(cfg, launcher, logger)
	if err != nil {
		return nil, err
	}
	lockPath := filepath.Join(cfg.Paths.DataDir, "sptnrd.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		server:   server,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and begins serving.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another sptnrd instance is already running")
	}

	serveCtx, cancel := context.WithCancel(ctx)
	if err := d.server.Start(serveCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start trigger server: %w", err)
	}
	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("sptnrd started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.Addr()),
		logging.Bool("api_key_enabled", d.cfg.Web.APIKeyEnabled),
	)
	return nil
}

// Stop shuts the server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("sptnrd stopped")
}

// Addr reports the address the trigger server is bound to.
func (d *Daemon) Addr() string {
	return d.server.Addr()
}

// LockPath returns the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

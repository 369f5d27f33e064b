package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"sptnr/internal/albumstore"
	"sptnr/internal/logging"
	"sptnr/internal/runlogs"
	"sptnr/internal/services"
	"sptnr/internal/services/spotify"
	"sptnr/internal/services/subsonic"
	"sptnr/internal/syncjob"
)

type syncOptions struct {
	preview bool
	force   bool
	artists []string
	albums  []string
	start   int
	limit   int
}

// loggedError marks an error that already reached the run log, so main only
// sets the exit code.
type loggedError struct {
	err error
}

func (e *loggedError) Error() string { return e.err.Error() }

func (e *loggedError) Unwrap() error { return e.err }

func runSync(cmd *cobra.Command, ctx *commandContext, opts syncOptions) error {
	if opts.start < 0 || opts.limit < 0 {
		return errors.New("--start and --limit must not be negative")
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	started := time.Now()
	logPath := runlogs.NewRunLogPath(cfg.Paths.LogDir, started)
	logger, err := logging.NewFromConfig(cfg, "stderr", logPath)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	logger = logging.WithContext(runCtx, logging.NewComponentLogger(logger, "sptnr"))
	logger.Info("sptnr starting",
		logging.String("version", version),
		logging.String("run_log", logPath),
		logging.String("config_path", ctx.loadedConfigPath()),
	)
	if removed := logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "sptnr_*.log", Exclude: []string{logPath}},
	); removed > 0 {
		logger.Info("pruned old run logs", logging.Int("removed", removed))
	}
	if err := cfg.ValidateSync(); err != nil {
		return abort(logger, err)
	}

	catalog, err := subsonic.New(cfg.Navidrome.BaseURL, cfg.Navidrome.User, cfg.Navidrome.Password,
		subsonic.WithTimeout(time.Duration(cfg.Navidrome.Timeout)*time.Second),
	)
	if err != nil {
		return abort(logger, err)
	}
	searcher, err := spotify.New(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		spotify.WithAPIBaseURL(cfg.Spotify.APIBaseURL),
		spotify.WithTokenURL(cfg.Spotify.TokenURL),
		spotify.WithTimeout(time.Duration(cfg.Spotify.Timeout)*time.Second),
	)
	if err != nil {
		return abort(logger, err)
	}
	if err := searcher.Authenticate(runCtx); err != nil {
		return abort(logger, err)
	}
	if err := catalog.Ping(runCtx); err != nil {
		return abort(logger, err)
	}

	albums, err := albumstore.Open(cfg.Paths.ProcessedAlbumsFile, opts.force)
	if err != nil {
		return abort(logger, err)
	}
	if opts.force {
		logger.Info("force enabled, previously processed albums will be redone")
	} else {
		logger.Debug("processed albums loaded", logging.Int("count", albums.Len()), logging.String("path", albums.Path()))
	}

	jobOpts := []syncjob.Option{
		syncjob.WithPreview(opts.preview),
		syncjob.WithForce(opts.force),
	}
	if isTerminal(cmd.ErrOrStderr()) {
		jobOpts = append(jobOpts, syncjob.WithProgress(progressFactory(cmd.ErrOrStderr())))
	}
	job, err := syncjob.New(catalog, searcher, albums, logger, jobOpts...)
	if err != nil {
		return abort(logger, err)
	}

	stats, err := job.Run(runCtx, syncjob.Selection{
		ArtistIDs: opts.artists,
		AlbumIDs:  opts.albums,
		Start:     opts.start,
		Limit:     opts.limit,
	})
	if err != nil {
		return abort(logger, err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), syncjob.Report{Stats: *stats}.Render(isTerminal(cmd.OutOrStdout())))
	return nil
}

func abort(logger *slog.Logger, err error) error {
	logging.ErrorWithContext(logger, "sync aborted", "sync_aborted",
		logging.Error(err),
		logging.String(logging.FieldErrorKind, services.Kind(err)),
		logging.String(logging.FieldErrorHint, abortHint(err)),
	)
	return &loggedError{err: err}
}

func abortHint(err error) string {
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return "fix the configuration and rerun"
	case errors.Is(err, services.ErrAuthentication):
		return "check SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET"
	case errors.Is(err, services.ErrConnectivity):
		return "check that Navidrome and Spotify are reachable"
	case errors.Is(err, services.ErrUpstream):
		return "the remote service rejected the request; rerun later, finished albums are skipped"
	default:
		return "check logs for details"
	}
}

func progressFactory(w io.Writer) func(total int) syncjob.Progress {
	return func(total int) syncjob.Progress {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("artists"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetWidth(30),
		)
	}
}

package syncjob

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sptnr/internal/logging"
	"sptnr/internal/services/spotify"
	"sptnr/internal/services/subsonic"
)

// ProcessedAlbums is the persisted set of finished albums.
type ProcessedAlbums interface {
	Contains(id string) bool
	Add(id string) error
}

// Progress is advanced once per artist in full-library runs.
type Progress interface {
	Add(n int) error
	Finish() error
}

// Selection chooses which part of the library a run covers. Artist IDs take
// precedence over album IDs; with neither, the artist index is sliced to
// [Start, Start+Limit) where a zero Limit means "to the end".
type Selection struct {
	ArtistIDs []string
	AlbumIDs  []string
	Start     int
	Limit     int
}

// Job rates library tracks from metadata popularity.
type Job struct {
	catalog  subsonic.Catalog
	searcher spotify.Searcher
	albums   ProcessedAlbums
	logger   *slog.Logger

	preview     bool
	force       bool
	newProgress func(total int) Progress
	now         func() time.Time
}

// Option configures a Job.
type Option func(*Job)

// WithPreview computes ratings without writing them back.
func WithPreview(preview bool) Option {
	return func(j *Job) { j.preview = preview }
}

// WithForce processes albums even when they are recorded as processed.
func WithForce(force bool) Option {
	return func(j *Job) { j.force = force }
}

// WithProgress installs a per-artist progress reporter for full-library runs.
func WithProgress(factory func(total int) Progress) Option {
	return func(j *Job) { j.newProgress = factory }
}

// WithClock overrides time.Now for elapsed-time reporting.
func WithClock(now func() time.Time) Option {
	return func(j *Job) {
		if now != nil {
			j.now = now
		}
	}
}

// New wires a job to its collaborators.
func New(catalog subsonic.Catalog, searcher spotify.Searcher, albums ProcessedAlbums, logger *slog.Logger, opts ...Option) (*Job, error) {
	if catalog == nil || searcher == nil || albums == nil {
		return nil, errors.New("sync job requires catalog, searcher, and processed album set")
	}
	job := &Job{
		catalog:  catalog,
		searcher: searcher,
		albums:   albums,
		logger:   logging.NewComponentLogger(logger, "syncjob"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(job)
	}
	return job, nil
}

// Run processes the selection and logs the completion report as its final
// line. Any error other than a search miss aborts the run; the returned stats
// then reflect the work done so far.
func (j *Job) Run(ctx context.Context, sel Selection) (*RunStats, error) {
	stats := &RunStats{Started: j.now()}
	logger := logging.WithContext(ctx, j.logger)

	if j.preview {
		logger.Info("preview mode, no changes will be made", logging.String(logging.FieldEventType, "preview_mode"))
	} else {
		logger.Info("syncing popularity with rating")
	}

	var err error
	switch {
	case len(sel.ArtistIDs) > 0:
		j.warnIgnored(logger, sel, true)
		err = j.runArtists(ctx, sel.ArtistIDs, stats)
	case len(sel.AlbumIDs) > 0:
		j.warnIgnored(logger, sel, false)
		err = j.runAlbums(ctx, sel.AlbumIDs, stats)
	default:
		err = j.runLibrary(ctx, sel.Start, sel.Limit, stats)
	}
	stats.Elapsed = j.now().Sub(stats.Started)
	if err != nil {
		return stats, err
	}

	for _, entry := range stats.Unmatched {
		logger.Info("unmatched track", logging.String("track", entry))
	}
	logger.Info(Report{Stats: *stats}.String())
	return stats, nil
}

func (j *Job) warnIgnored(logger *slog.Logger, sel Selection, byArtist bool) {
	if byArtist && len(sel.AlbumIDs) > 0 {
		logging.WarnWithContext(logger, "album IDs ignored because artist IDs were given", "selection_albums_ignored",
			logging.Strings("album_ids", sel.AlbumIDs),
			logging.String(logging.FieldErrorHint, "pass either --artist or --album"),
			logging.String(logging.FieldImpact, "only the listed artists are processed"),
		)
	}
	if sel.Start != 0 || sel.Limit != 0 {
		logging.WarnWithContext(logger, "explicit IDs override --start and --limit; ignoring the range", "selection_range_ignored",
			logging.Int("start", sel.Start),
			logging.Int("limit", sel.Limit),
			logging.String(logging.FieldErrorHint, "drop --start/--limit when selecting by ID"),
			logging.String(logging.FieldImpact, "the range has no effect"),
		)
	}
}

func (j *Job) runArtists(ctx context.Context, ids []string, stats *RunStats) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		artist, err := j.catalog.GetArtist(ctx, id)
		if err != nil {
			return err
		}
		if err := j.processArtist(ctx, artist, -1, stats); err != nil {
			return err
		}
	}
	return nil
}

func (j *Job) runAlbums(ctx context.Context, ids []string, stats *RunStats) error {
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		album, err := j.catalog.GetAlbum(ctx, id)
		if err != nil {
			return err
		}
		logging.WithContext(ctx, j.logger).Info("processing artist",
			logging.String("artist", album.Artist),
			logging.String(logging.FieldArtistID, album.ArtistID),
		)
		if err := j.processAlbum(ctx, id, album.Name, album, stats); err != nil {
			return err
		}
	}
	return nil
}

func (j *Job) runLibrary(ctx context.Context, start, limit int, stats *RunStats) error {
	artists, err := j.catalog.GetArtists(ctx)
	if err != nil {
		return err
	}
	selected := sliceArtists(artists, start, limit)
	logging.WithContext(ctx, j.logger).Info("artists to process",
		logging.Int("total", len(selected)),
		logging.Int("library_artists", len(artists)),
	)

	var progress Progress
	if j.newProgress != nil && len(selected) > 0 {
		progress = j.newProgress(len(selected))
		defer func() { _ = progress.Finish() }()
	}

	for index := range selected {
		if err := ctx.Err(); err != nil {
			return err
		}
		artist, err := j.catalog.GetArtist(ctx, selected[index].ID)
		if err != nil {
			return err
		}
		if err := j.processArtist(ctx, artist, start+index, stats); err != nil {
			return err
		}
		if progress != nil {
			_ = progress.Add(1)
		}
	}
	return nil
}

// sliceArtists applies the [start, start+limit) window, clamping out-of-range
// bounds to an empty or shorter slice.
func sliceArtists(artists []subsonic.Artist, start, limit int) []subsonic.Artist {
	start = max(start, 0)
	if start >= len(artists) {
		return nil
	}
	end := len(artists)
	if limit > 0 && start+limit < end {
		end = start + limit
	}
	return artists[start:end]
}

package syncjob

import (
	"context"
	"fmt"

	"sptnr/internal/logging"
	"sptnr/internal/services"
	"sptnr/internal/services/subsonic"
)

// processArtist rates every album of artist. index is the position in the
// library listing, or -1 when the artist was selected by ID.
func (j *Job) processArtist(ctx context.Context, artist *subsonic.Artist, index int, stats *RunStats) error {
	ctx = services.WithArtistID(ctx, artist.ID)
	attrs := []logging.Attr{logging.String("artist", artist.Name)}
	if index >= 0 {
		attrs = append(attrs, logging.Int("index", index))
	}
	logging.WithContext(ctx, j.logger).Info("processing artist", logging.Args(attrs...)...)

	for _, album := range artist.Albums {
		if err := j.processAlbum(ctx, album.ID, album.Name, nil, stats); err != nil {
			return err
		}
	}
	return nil
}

// processAlbum rates the tracks of one album and records it as processed.
// prefetched may carry the album when the caller already loaded it.
func (j *Job) processAlbum(ctx context.Context, id, name string, prefetched *subsonic.Album, stats *RunStats) error {
	ctx = services.WithAlbumID(ctx, id)
	logger := logging.WithContext(ctx, j.logger)
	logger.Info("processing album", logging.String("album", name))

	if !j.force && j.albums.Contains(id) {
		logger.Info("skipping already processed album", logging.String(logging.FieldEventType, "album_skipped"))
		return nil
	}

	album := prefetched
	if album == nil {
		var err error
		if album, err = j.catalog.GetAlbum(ctx, id); err != nil {
			return err
		}
	}

	for _, song := range album.Songs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := j.processTrack(ctx, song, album.Artist, stats); err != nil {
			return err
		}
	}

	if err := j.albums.Add(id); err != nil {
		return fmt.Errorf("record processed album %s: %w", id, err)
	}
	return nil
}

// processTrack searches for song with up to three progressively looser
// queries and, on a match, writes the derived rating unless previewing.
func (j *Job) processTrack(ctx context.Context, song subsonic.Song, artist string, stats *RunStats) error {
	logger := logging.WithContext(ctx, j.logger)
	queries := []string{
		albumQuery(song.Title, artist, song.Album),
		artistQuery(StripParenthetical(song.Title), artist),
		artistQuery(AbbreviatePart(song.Title), artist),
	}

	var (
		popularity int
		found      bool
		err        error
	)
	for attempt, query := range queries {
		popularity, found, err = j.searcher.SearchTrack(ctx, query)
		if err != nil {
			return err
		}
		if found {
			logger.Debug("search matched", logging.String("query", query), logging.Int("attempt", attempt+1))
			break
		}
	}
	stats.Total++

	if !found {
		logger.Info("track not found",
			logging.String("track", song.Title),
			logging.String(logging.FieldTrackID, song.ID),
		)
		stats.Unmatched = append(stats.Unmatched, artist+" - "+song.Album+" - "+song.Title)
		stats.NotFound++
		return nil
	}

	rating := FromPopularity(float64(popularity))
	logger.Info("track rated",
		logging.String("track", song.Title),
		logging.Int("popularity", popularity),
		logging.Int("rating", rating),
		logging.String(logging.FieldTrackID, song.ID),
	)
	if !j.preview {
		if err := j.catalog.SetRating(ctx, song.ID, rating); err != nil {
			return err
		}
	}
	stats.Found++
	return nil
}

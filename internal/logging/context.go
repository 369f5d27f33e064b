package logging

import (
	"context"
	"log/slog"

	"sptnr/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one sync run across its log lines.
	FieldRunID = "run_id"
	// FieldArtistID is the catalog artist identifier.
	FieldArtistID = "artist_id"
	// FieldAlbumID is the catalog album identifier.
	FieldAlbumID = "album_id"
	// FieldTrackID is the catalog track identifier.
	FieldTrackID = "track_id"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to check next.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the services error marker label.
	FieldErrorKind = "error_kind"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if id, ok := services.ArtistIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldArtistID, id))
	}
	if id, ok := services.AlbumIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldAlbumID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}

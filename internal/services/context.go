package services

import "context"

type contextKey string

const (
	runIDKey    contextKey = "run_id"
	artistIDKey contextKey = "artist_id"
	albumIDKey  contextKey = "album_id"
)

// WithRunID annotates context with the sync run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the sync run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithArtistID annotates context with the catalog artist being processed.
func WithArtistID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, artistIDKey, id)
}

// ArtistIDFromContext returns the artist identifier if present.
func ArtistIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(artistIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithAlbumID annotates context with the catalog album being processed.
func WithAlbumID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, albumIDKey, id)
}

// AlbumIDFromContext returns the album identifier if present.
func AlbumIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(albumIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

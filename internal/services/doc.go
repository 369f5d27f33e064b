// Package services defines shared utilities consumed by the sync job and its
// external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run, artist, and album identifiers for
//     logging.
//   - Structured error markers plus the Wrap helper that classify failures as
//     configuration, authentication, upstream protocol, or connectivity
//     problems.
//
// The subsonic and spotify subpackages hold the two HTTP clients.
package services

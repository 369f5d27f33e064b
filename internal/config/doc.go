// Package config loads, normalizes, and validates sptnr configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a .env file when present, and honours
// the environment fallbacks NAV_BASE_URL, NAV_USER, NAV_PASS,
// SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, WEB_API_KEY and
// ENABLE_WEB_API_KEY.
//
// Load only checks settings common to both binaries. The sync job calls
// ValidateSync and the trigger daemon calls ValidateTrigger so each fails at
// startup on exactly the credentials it needs.
package config

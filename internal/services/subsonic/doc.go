// Package subsonic is a small client for the Subsonic REST API as served by
// Navidrome. It authenticates with the hex-encoded password form, requests
// JSON, and classifies failures with the services error markers: transport
// problems are connectivity errors while non-200 answers, undecodable bodies,
// and error envelopes are upstream errors.
package subsonic

// Package spotify wraps the metadata API used to look up track popularity.
//
// Authentication uses the client-credentials grant once per run. Searches are
// single-result track queries; rate limiting and every other API error are
// reported as upstream errors without retrying.
package spotify

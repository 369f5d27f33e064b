package daemon

import "net/url"

// BuildArgs translates trigger query parameters into sync job flags. Flags
// are emitted in a fixed order: preview, force, each artist, each album,
// start, limit. Unknown parameters (including api_key) are ignored.
func BuildArgs(query url.Values) []string {
	args := []string{}
	if query.Get("preview") == "true" {
		args = append(args, "--preview")
	}
	if query.Get("force") == "true" {
		args = append(args, "--force")
	}
	for _, id := range query["artist"] {
		args = append(args, "--artist", id)
	}
	for _, id := range query["album"] {
		args = append(args, "--album", id)
	}
	if start := query.Get("start"); start != "" {
		args = append(args, "--start", start)
	}
	if limit := query.Get("limit"); limit != "" {
		args = append(args, "--limit", limit)
	}
	return args
}

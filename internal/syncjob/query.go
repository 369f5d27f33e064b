package syncjob

import (
	"regexp"
	"strings"
)

var parenthetical = regexp.MustCompile(`\s*\(.*?\)\s*`)

// StripParenthetical removes every "(...)" group from title, e.g. "Song (Live)"
// becomes "Song".
func StripParenthetical(title string) string {
	return strings.TrimSpace(parenthetical.ReplaceAllString(title, " "))
}

// AbbreviatePart rewrites "Part" as "Pt.", the form the metadata catalog
// uses for multi-part titles.
func AbbreviatePart(title string) string {
	return strings.ReplaceAll(title, "Part", "Pt.")
}

func albumQuery(title, artist, album string) string {
	return title + " artist:" + artist + " album:" + album
}

func artistQuery(title, artist string) string {
	return title + " artist:" + artist
}

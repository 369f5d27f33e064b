package runlogs

import (
	"regexp"
	"strconv"
	"strings"
)

var summaryPattern = regexp.MustCompile(
	`Tracks: (\d+) \| Found: (\d+) \|[^|]*\| Not Found: (\d+) \| Match: ([0-9]+(?:\.[0-9]+)?)% \| Time: ((?:\d+[hms] ?)+)`,
)

// Summary holds the counters printed on the final line of a completed run.
type Summary struct {
	Tracks   int
	Found    int
	NotFound int
	Match    float64
	Elapsed  string
}

// ParseSummary extracts the completion report from a log line. The report may
// be embedded in a formatted log line (timestamp, level, component prefix, or
// a JSON record). ok is false when the line is not a completion report, which
// is the case for runs that are still going or that aborted.
func ParseSummary(line string) (Summary, bool) {
	match := summaryPattern.FindStringSubmatch(line)
	if match == nil {
		return Summary{}, false
	}
	tracks, _ := strconv.Atoi(match[1])
	found, _ := strconv.Atoi(match[2])
	notFound, _ := strconv.Atoi(match[3])
	percent, err := strconv.ParseFloat(match[4], 64)
	if err != nil {
		return Summary{}, false
	}
	return Summary{
		Tracks:   tracks,
		Found:    found,
		NotFound: notFound,
		Match:    percent,
		Elapsed:  strings.TrimSpace(match[5]),
	}, true
}

package syncjob

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
)

const barWidth = 20

// RunStats accumulates counters for one run. It is passed by pointer through
// the artist, album, and track steps.
type RunStats struct {
	Total     int
	Found     int
	NotFound  int
	Unmatched []string
	Started   time.Time
	Elapsed   time.Duration
}

// Report renders the completion line of a run.
type Report struct {
	Stats RunStats
}

// String returns the uncoloured completion line written to the run log.
func (r Report) String() string {
	return r.Render(false)
}

// Render formats the completion line, optionally with terminal colours.
func (r Report) Render(colorize bool) string {
	s := r.Stats
	foundBlocks := 0
	if s.Total > 0 {
		foundBlocks = int(math.RoundToEven(float64(s.Found) * barWidth / float64(s.Total)))
	}
	foundBlocks = min(max(foundBlocks, 0), barWidth)

	paint := func(text string, attrs ...color.Attribute) string {
		if !colorize {
			return text
		}
		c := color.New(attrs...)
		c.EnableColor()
		return c.Sprint(text)
	}

	allFound := s.Found == s.Total
	foundColor := []color.Attribute{color.FgYellow, color.Bold}
	foundBarColor := []color.Attribute{color.Bold}
	if allFound {
		foundColor = []color.Attribute{color.FgGreen, color.Bold}
		foundBarColor = foundColor
	}
	notFoundColor := []color.Attribute{color.FgRed, color.Bold}
	if s.NotFound == 0 {
		notFoundColor = []color.Attribute{color.FgGreen, color.Bold}
	}
	accent := []color.Attribute{color.FgMagenta, color.Bold}

	emptyCell := "░"
	if colorize {
		emptyCell = "█"
	}
	bar := paint(strings.Repeat("█", foundBlocks), foundBarColor...) +
		paint(strings.Repeat(emptyCell, barWidth-foundBlocks), notFoundColor...)

	return fmt.Sprintf("Tracks: %s | Found: %s |%s| Not Found: %s | Match: %s | Time: %s",
		paint(strconv.Itoa(s.Total), accent...),
		paint(strconv.Itoa(s.Found), foundColor...),
		bar,
		paint(strconv.Itoa(s.NotFound), notFoundColor...),
		paint(formatPercent(s.Found, s.Total)+"%", foundColor...),
		paint(FormatElapsed(s.Elapsed), accent...),
	)
}

// formatPercent prints whole percentages with one decimal ("70.0") and an
// empty run as "0".
func formatPercent(found, total int) string {
	if total <= 0 {
		return "0"
	}
	text := strconv.FormatFloat(MatchPercentage(found, total), 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// FormatElapsed renders d as "1h 2m 3s", omitting zero parts. Seconds are
// always shown when they are the only part, so an instant run reads "0s".
func FormatElapsed(d time.Duration) string {
	total := int(d / time.Second)
	if total < 0 {
		total = 0
	}
	hours, minutes, seconds := total/3600, (total%3600)/60, total%60

	parts := make([]string, 0, 3)
	if hours > 0 {
		parts = append(parts, strconv.Itoa(hours)+"h")
	}
	if minutes > 0 {
		parts = append(parts, strconv.Itoa(minutes)+"m")
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, strconv.Itoa(seconds)+"s")
	}
	return strings.Join(parts, " ")
}

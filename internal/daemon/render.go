package daemon

import (
	"html"
	"net/url"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tdewolff/minify/v2"
	minhtml "github.com/tdewolff/minify/v2/html"

	"sptnr/internal/runlogs"
)

const timestampLayout = "2006-01-02 15:04:05 MST"

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", minhtml.Minify)
	return m
}

func renderPage(title, body string) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
	b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title><style>")
	b.WriteString(pageStyle)
	b.WriteString("</style></head><body><h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>")
	b.WriteString(body)
	b.WriteString("</body></html>")
	return b.String()
}

const pageStyle = `body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { padding: 0.3em 0.8em; border-bottom: 1px solid #ddd; text-align: left; }
pre { white-space: pre-wrap; }`

// renderLogTable lists run logs with their parsed summaries. apiKey, when set,
// is carried over to each link so the detail pages pass the key check.
func renderLogTable(entries []runlogs.Entry, apiKey string) string {
	if len(entries) == 0 {
		return "<p>No run logs yet.</p>"
	}

	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Log", "Modified", "Size", "Tracks", "Found", "Not Found", "Match", "Time"})
	for _, entry := range entries {
		row := table.Row{
			logLink(entry.Name, apiKey),
			entry.ModTime.UTC().Format(timestampLayout),
			strconv.FormatInt(entry.Size, 10),
		}
		if entry.Completed {
			s := entry.Summary
			row = append(row,
				strconv.Itoa(s.Tracks),
				strconv.Itoa(s.Found),
				strconv.Itoa(s.NotFound),
				strconv.FormatFloat(s.Match, 'f', -1, 64)+"%",
				html.EscapeString(s.Elapsed),
			)
		} else {
			row = append(row, "-", "-", "-", "-", "incomplete")
		}
		tw.AppendRow(row)
	}
	tw.Style().HTML = table.HTMLOptions{
		CSSClass:    "run-logs",
		EmptyColumn: "&nbsp;",
		EscapeText:  false,
		Newline:     "<br/>",
	}
	return tw.RenderHTML()
}

func logLink(name, apiKey string) string {
	href := "/logs/" + url.PathEscape(name)
	if apiKey != "" {
		href += "?api_key=" + url.QueryEscape(apiKey)
	}
	return `<a href="` + html.EscapeString(href) + `">` + html.EscapeString(name) + `</a>`
}

func renderLogContent(content []byte) string {
	return "<pre>" + html.EscapeString(string(content)) + "</pre>"
}

package summary

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/wrv/memmerge/internal/scanner"
)

// Data is everything the HTML run summary shows.
type Data struct {
	Summary    string
	Files      []scanner.FileReport
	Unparsable []string
}

const pageHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>memcheck merge</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.3rem 0.6rem; text-align: left; }
</style>
</head>
<body>
`

// WriteHTML renders the run summary as a small standalone HTML page at path.
// The body is authored as markdown and rendered with goldmark, so the page
// content stays diffable in tests and logs.
func WriteHTML(fs billy.Filesystem, path string, d Data) error {
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown(d)), &body); err != nil {
		return fmt.Errorf("render summary markdown: %w", err)
	}

	var page bytes.Buffer
	page.WriteString(pageHead)
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")

	if err := util.WriteFile(fs, path, page.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write summary page: %w", err)
	}
	return nil
}

// markdown lays the run out as a heading, the one-line summary, a per-file
// outcome table, and an unparsable-file list when there is one.
func markdown(d Data) string {
	var b strings.Builder
	b.WriteString("# memcheck merge\n\n")
	b.WriteString(d.Summary)
	b.WriteString("\n")

	if len(d.Files) > 0 {
		b.WriteString("\n| report | status | errors |\n")
		b.WriteString("| --- | --- | --- |\n")
		for _, f := range d.Files {
			count := ""
			if f.ErrorCount > 0 {
				count = fmt.Sprintf("%d", f.ErrorCount)
			}
			fmt.Fprintf(&b, "| %s | %s | %s |\n", tableCell(f.Path), f.Status, count)
		}
	}

	if len(d.Unparsable) > 0 {
		b.WriteString("\n## Unparsable files\n\n")
		for _, path := range d.Unparsable {
			fmt.Fprintf(&b, "- %s\n", path)
		}
	}
	return b.String()
}

// tableCell keeps a path from breaking the table when it contains a pipe.
func tableCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

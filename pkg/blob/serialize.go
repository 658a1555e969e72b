// Package blob converts between file records and the annotated clipboard text format:
//
//	=== src/app.js ===
//	console.log(1);
//
// Each record is a "=== <path> ===" header followed by its content, optionally wrapped in a
// fenced code block, with a blank line between records.
package blob

import (
	"path"
	"strings"

	"codeclip/pkg/scan"
)

const (
	headerMarker = "==="
	fence        = "```"
)

// Options controls serialization.
type Options struct {
	// Fenced wraps each body in a fenced code block tagged with the file extension.
	Fenced bool
}

// Header renders the header line for relPath, without the newline.
func Header(relPath string) string {
	return headerMarker + " " + relPath + " " + headerMarker
}

// Serialize renders records in plain framing. Directory records are skipped.
func Serialize(records []scan.FileRecord) string {
	return SerializeWith(records, Options{})
}

// SerializeWith renders records with the given options, in input order.
func SerializeWith(records []scan.FileRecord, opts Options) string {
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.IsDirectory {
			continue
		}

		var b strings.Builder
		b.WriteString(Header(rec.RelativePath))
		b.WriteByte('\n')
		if opts.Fenced {
			f := fenceFor(rec.Content)
			b.WriteString(f + LanguageTag(rec.RelativePath) + "\n")
			b.WriteString(strings.TrimSuffix(rec.Content, "\n"))
			b.WriteString("\n" + f + "\n")
		} else {
			b.WriteString(rec.Content)
			b.WriteByte('\n')
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "\n")
}

// fenceFor returns a backtick fence longer than any fence line inside content, so the
// content's own fences cannot close the block.
func fenceFor(content string) string {
	n := len(fence)
	for _, line := range strings.Split(content, "\n") {
		if run := backtickRun(line); run >= n {
			n = run + 1
		}
	}
	return strings.Repeat("`", n)
}

// backtickRun counts the backticks that start line after leading whitespace.
func backtickRun(line string) int {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) - len(strings.TrimLeft(trimmed, "`"))
}

// LanguageTag returns the fence tag for a path: its lowercased extension without the dot.
func LanguageTag(relPath string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(relPath), "."))
}

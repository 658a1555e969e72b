package ui

import (
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/quick"
)

// DefaultTheme is the chroma style used for parsed blocks.
const DefaultTheme = "monokai"

// LexerName picks a chroma lexer for filename, or "plaintext".
func LexerName(filename string) string {
	if l := lexers.Match(filename); l != nil {
		return l.Config().Name
	}
	return "plaintext"
}

// Highlight writes code with terminal colours chosen by filename.
func Highlight(w io.Writer, code, filename, theme string) error {
	if theme == "" {
		theme = DefaultTheme
	}
	if err := quick.Highlight(w, code, LexerName(filename), "terminal256", theme); err != nil {
		return fmt.Errorf("failed to highlight %s: %w", filename, err)
	}
	return nil
}

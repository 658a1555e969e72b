package blob

import (
	"regexp"
	"strings"
)

var headerPattern = regexp.MustCompile(`^\s*===\s*(.+?)\s*===\s*$`)

// ParsedCodeBlock is one (path, content) unit recovered from a blob.
type ParsedCodeBlock struct {
	Path      string // Header text, trimmed.
	Filename  string // Last path segment.
	Extension string // After the last '.' of Filename, without the dot; empty if none.
	Code      string // Block body, trimmed.
}

// NewParsedCodeBlock decomposes path and trims code.
func NewParsedCodeBlock(path, code string) ParsedCodeBlock {
	filename := path
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		filename = path[i+1:]
	}
	ext := ""
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i+1:]
	}
	return ParsedCodeBlock{
		Path:      path,
		Filename:  filename,
		Extension: ext,
		Code:      strings.TrimSpace(code),
	}
}

type parseState int

const (
	scanning parseState = iota
	inBlock
)

type parser struct {
	state  parseState
	blocks []ParsedCodeBlock

	path    string
	hasPath bool

	// Current section: lines between one header and the next.
	loose    []string
	hasFence bool

	fenceLen int // Backticks in the fence that opened the current block.

	code strings.Builder
}

// Parse recovers blocks from text in order of appearance.
//
// A header line sets the current path. Fenced blocks under a header become one block each;
// a fence opened before any header is dropped, and a fence left open at the end of input is
// discarded. A block closes on a bare fence at least as long as the one that opened it. A header section with no fence at all yields its text as a single block, which
// is how plain serialized output is read back. Blank lines inside fenced bodies are kept.
func Parse(text string) []ParsedCodeBlock {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	p := &parser{}
	for _, line := range strings.Split(text, "\n") {
		p.feed(line)
	}
	if p.state == scanning {
		p.flushSection()
	}
	return p.blocks
}

func (p *parser) feed(line string) {
	switch p.state {
	case scanning:
		if m := headerPattern.FindStringSubmatch(line); m != nil {
			p.flushSection()
			p.path = strings.TrimSpace(m[1])
			p.hasPath = true
			return
		}
		if run := backtickRun(line); run >= len(fence) {
			p.state = inBlock
			p.hasFence = true
			p.fenceLen = run
			p.code.Reset()
			return
		}
		p.loose = append(p.loose, line)

	case inBlock:
		if isClosingFence(line, p.fenceLen) {
			p.state = scanning
			if p.hasPath {
				p.blocks = append(p.blocks, NewParsedCodeBlock(p.path, p.code.String()))
			}
			return
		}
		p.code.WriteString(line)
		p.code.WriteByte('\n')
	}
}

// isClosingFence reports whether line is a bare backtick fence at least as long as the opener.
func isClosingFence(line string, openLen int) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= openLen && strings.Trim(trimmed, "`") == ""
}

// flushSection emits the loose text of a fence-free header section and starts a new one.
func (p *parser) flushSection() {
	if p.hasPath && !p.hasFence {
		p.blocks = append(p.blocks, NewParsedCodeBlock(p.path, strings.Join(p.loose, "\n")))
	}
	p.loose = p.loose[:0]
	p.hasFence = false
}

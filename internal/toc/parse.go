package toc

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a line that does not match the TOC grammar.
type SyntaxError struct {
	Line   int    // 1-based line number
	Column int    // 1-based byte column of the offending character
	Text   string // the whole offending line
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s: %q", e.Line, e.Column, e.Msg, e.Text)
}

// Parse reads TOC text. An empty input yields an empty Toc. The first
// malformed line aborts the parse; depth and page values are not checked
// here.
//
// Lines end with "\n" or "\r\n". A final line terminator is optional.
func Parse(text string) (*Toc, error) {
	t := &Toc{}
	if text == "" {
		return t, nil
	}

	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	t.Entries = make([]Entry, 0, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		e, err := parseLine(line)
		if err != nil {
			err.Line = i + 1
			return nil, err
		}
		t.Entries = append(t.Entries, e)
	}
	return t, nil
}

func parseLine(line string) (Entry, *SyntaxError) {
	pos := 0
	for pos < len(line) && line[pos] == '+' {
		pos++
	}
	depth := pos

	start := pos
	for pos < len(line) && isDigit(line[pos]) {
		pos++
	}
	if pos == start {
		return Entry{}, lineError(line, pos, "expected page number")
	}
	page, err := strconv.ParseUint(line[start:pos], 10, 32)
	if err != nil {
		return Entry{}, lineError(line, start, "invalid page number")
	}

	if pos >= len(line) || line[pos] != ' ' {
		return Entry{}, lineError(line, pos, "expected space after page number")
	}
	pos++

	return Entry{
		Depth: depth,
		Page:  int(page),
		Title: line[pos:],
	}, nil
}

func lineError(line string, pos int, msg string) *SyntaxError {
	return &SyntaxError{Column: pos + 1, Text: line, Msg: msg}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

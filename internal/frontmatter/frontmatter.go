// Package frontmatter implements the `key = "value"` front-matter block used
// by post files: a `---` delimited header of one assignment per line, followed
// by the Markdown body.
//
// The grammar is deliberately a small hand-rolled parser instead of a general
// data-interchange format so the accepted input stays under this project's
// control and is testable line by line.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Style captures formatting details needed for stable rewriting.
//
// It intentionally focuses on newline shape and does not attempt to preserve
// key order or whitespace inside the block.
type Style struct {
	Newline string
}

// ErrMissingClosingDelimiter indicates the document started with a front-matter
// delimiter but did not contain a closing delimiter before end of file.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

// ParseError describes one line inside a front-matter block that is neither
// blank nor a `key = "value"` assignment.
type ParseError struct {
	Line   int // 1-based line number within the block
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("front matter line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Warning reports a non-fatal oddity found while parsing a block, such as a
// duplicate key (last occurrence wins).
type Warning struct {
	Line    int
	Message string
}

// Split separates a `---` delimited front-matter block from the Markdown body.
//
// If the document does not start with the opening delimiter, had is false and
// body is the full input. A single blank line separating the closing delimiter
// from the body is stripped exactly once; everything else is returned verbatim.
func Split(content []byte) (block []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	blockStart := len(open)
	closeLine := []byte("---" + nl)
	var blockEnd, bodyStart int
	if bytes.HasPrefix(content[blockStart:], closeLine) {
		blockEnd = blockStart
		bodyStart = blockStart + len(closeLine)
	} else {
		closeSeq := []byte(nl + "---" + nl)
		idx := bytes.Index(content[blockStart:], closeSeq)
		if idx < 0 {
			// A file ending exactly at the closing delimiter has no trailing newline.
			tail := []byte(nl + "---")
			if bytes.HasSuffix(content, tail) {
				blockEnd = len(content) - len(tail) + len(nl)
				return content[blockStart:blockEnd], []byte{}, true, style, nil
			}
			return nil, nil, false, style, ErrMissingClosingDelimiter
		}
		blockEnd = blockStart + idx + len(nl)
		bodyStart = blockStart + idx + len(closeSeq)
	}

	body = content[bodyStart:]
	// One separating blank line between the block and the body is permissible
	// and is stripped exactly once.
	if bytes.HasPrefix(body, []byte(nl)) {
		body = body[len(nl):]
	}
	return content[blockStart:blockEnd], body, true, style, nil
}

// Parse decodes a raw front-matter block (without delimiters) into a mapping
// of string keys to string values.
//
// Keys are case sensitive. Duplicate keys are resolved last-wins and reported
// as warnings. Any line that is neither blank nor a `key = "value"` assignment
// fails with a ParseError.
func Parse(block []byte) (map[string]string, []Warning, error) {
	fields := map[string]string{}
	var warnings []Warning

	lines := strings.Split(strings.ReplaceAll(string(block), "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, warnings, &ParseError{Line: i + 1, Text: line, Reason: "missing '='"}
		}

		key := strings.TrimSpace(line[:eq])
		if key == "" {
			return nil, warnings, &ParseError{Line: i + 1, Text: line, Reason: "empty key"}
		}
		if strings.ContainsAny(key, " \t") {
			return nil, warnings, &ParseError{Line: i + 1, Text: line, Reason: "key contains whitespace"}
		}

		raw := strings.TrimSpace(line[eq+1:])
		value, err := unquote(raw)
		if err != nil {
			return nil, warnings, &ParseError{Line: i + 1, Text: line, Reason: err.Error()}
		}

		if _, dup := fields[key]; dup {
			warnings = append(warnings, Warning{
				Line:    i + 1,
				Message: fmt.Sprintf("duplicate key %q, last occurrence wins", key),
			})
		}
		fields[key] = value
	}

	return fields, warnings, nil
}

func unquote(raw string) (string, error) {
	if len(raw) < 2 || raw[0] != '"' || raw[len(raw)-1] != '"' {
		return "", errors.New("value is not a double-quoted string")
	}
	value, err := strconv.Unquote(raw)
	if err != nil {
		return "", errors.New("invalid quoted string")
	}
	return value, nil
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			break
		}
	}
	return Style{Newline: newline}
}

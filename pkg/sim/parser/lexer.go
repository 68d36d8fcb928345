package parser

import (
	"fmt"
	"strings"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

const (
	headingMarker     = "###"
	descriptionMarker = ">"
	separatorLine     = "->"
)

// lineKind is the lexical class of one source line.
type lineKind int

const (
	lineBlank lineKind = iota
	lineHeading
	lineDescription
	lineSeparator
	lineBody // a bind line, or garbage that fails bind-line parsing
)

// line is one classified source line.
type line struct {
	number int      // 1-based
	raw    string   // line without its terminator
	kind   lineKind //
	text   string   // trimmed payload: title, description, or the whole trimmed line
	indent int      // byte offset of the first non-blank character
}

// splitLines splits a document on "\n", dropping a trailing "\r" from each line.
func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// classify determines the kind of a raw line. Leading whitespace is not
// significant for any kind of line.
func classify(number int, raw string) line {
	trimmed := strings.TrimSpace(raw)
	l := line{
		number: number,
		raw:    raw,
		text:   trimmed,
		indent: strings.Index(raw, trimmed),
	}

	switch {
	case trimmed == "":
		l.kind = lineBlank
		l.indent = 0
	case strings.HasPrefix(trimmed, headingMarker):
		l.kind = lineHeading
		l.text = strings.TrimSpace(trimmed[len(headingMarker):])
	case strings.HasPrefix(trimmed, descriptionMarker):
		l.kind = lineDescription
		l.text = strings.TrimSpace(trimmed[len(descriptionMarker):])
	case trimmed == separatorLine:
		l.kind = lineSeparator
	default:
		l.kind = lineBody
	}
	return l
}

// tagToken is one "+tag" or "-tag" token of a bind line.
type tagToken struct {
	prefix byte // '+' or '-'
	name   string
	column int
}

// bindLine is a successfully tokenized "<entity> <tag> <tag> ..." line.
type bindLine struct {
	entity string
	column int
	tags   []tagToken
}

// field is a whitespace-separated token and its 1-based column.
type field struct {
	text   string
	column int
}

// fields splits s on spaces and tabs, keeping columns.
func fields(s string) []field {
	var out []field
	start := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\t' {
			if start >= 0 {
				out = append(out, field{text: s[start:i], column: start + 1})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, field{text: s[start:], column: start + 1})
	}
	return out
}

// isIdentifier reports whether s is a non-empty run of [A-Za-z0-9_].
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !((c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_') {
			return false
		}
	}
	return true
}

// parseBindLine tokenizes a body line. The returned error has no File set;
// the scanner fills in the source name.
func parseBindLine(l line) (*bindLine, *simErrors.Error) {
	toks := fields(l.raw)
	if len(toks) == 0 {
		return nil, syntaxError(l.number, 0, "empty bind line", "")
	}

	first := toks[0]
	if first.text[0] == '+' || first.text[0] == '-' {
		return nil, syntaxError(l.number, first.column,
			fmt.Sprintf("bind line must start with an entity name, found tag %q", first.text),
			"Start the line with the entity the tags apply to, e.g. 'thing +tag'")
	}
	if !isIdentifier(first.text) {
		return nil, syntaxError(l.number, first.column,
			fmt.Sprintf("unexpected content %q", l.text),
			simErrors.SuggestSeparator(l.text))
	}
	if len(toks) == 1 {
		return nil, syntaxError(l.number, first.column,
			fmt.Sprintf("entity %q has no tags", first.text),
			"Add at least one '+tag' or '-tag' after the entity name")
	}

	bl := &bindLine{
		entity: first.text,
		column: first.column,
		tags:   make([]tagToken, 0, len(toks)-1),
	}

	for _, tok := range toks[1:] {
		prefix := tok.text[0]
		if prefix != '+' && prefix != '-' {
			return nil, syntaxError(l.number, tok.column,
				fmt.Sprintf("tag %q is missing a '+' or '-' prefix", tok.text),
				simErrors.SuggestPrefix(tok.text))
		}
		name := tok.text[1:]
		if name == "" {
			return nil, syntaxError(l.number, tok.column,
				fmt.Sprintf("empty tag name after %q", string(prefix)), "")
		}
		if !isIdentifier(name) {
			return nil, syntaxError(l.number, tok.column,
				fmt.Sprintf("invalid tag name %q", name),
				"Tag names may contain only letters, digits and '_'")
		}
		bl.tags = append(bl.tags, tagToken{prefix: prefix, name: name, column: tok.column})
	}

	return bl, nil
}

func syntaxError(lineNo, column int, message, suggestion string) *simErrors.Error {
	return &simErrors.Error{
		Type:       simErrors.ErrorTypeSyntax,
		Severity:   simErrors.SeverityError,
		Message:    message,
		Location:   ast.Location{Line: lineNo, Column: column},
		Suggestion: suggestion,
	}
}

package parser

import (
	"fmt"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// state is the position of the scanner in the rule grammar.
type state int

const (
	stateExpectHeadingOrEnd state = iota // before the first "###"
	stateExpectDescription               // after a heading, waiting for "> ..."
	stateInBody                          // bind lines / separator of the current rule
)

func (s state) String() string {
	switch s {
	case stateExpectHeadingOrEnd:
		return "expect-heading"
	case stateExpectDescription:
		return "expect-description"
	default:
		return "in-body"
	}
}

// scanner runs one parse. It owns all intermediate state, so concurrent
// parses never share anything.
type scanner struct {
	source string
	state  state

	rules   []*ast.Rule
	current *ast.Rule
	binds   map[string]*ast.Bind // entity -> bind, current rule only
	side    ast.Side
	sepLine int // line of the current rule's separator, 0 if none yet
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		state:  stateExpectHeadingOrEnd,
	}
}

// run scans the whole document. On the first grammar violation it returns
// the error and discards everything built so far.
func (s *scanner) run(text string) (*ast.RuleSet, *simErrors.Error) {
	raw := splitLines(text)

	for i, r := range raw {
		if err := s.step(classify(i+1, r)); err != nil {
			err.Location.File = s.source
			return nil, err
		}
	}

	if err := s.finish(); err != nil {
		err.Location.File = s.source
		return nil, err
	}

	return &ast.RuleSet{Source: s.source, Rules: s.rules}, nil
}

// step applies one line to the state machine.
func (s *scanner) step(l line) *simErrors.Error {
	if l.kind == lineBlank {
		return nil
	}

	switch s.state {
	case stateExpectHeadingOrEnd:
		if l.kind != lineHeading {
			return syntaxError(l.number, l.indent+1,
				"content before the first rule heading",
				"Every rule starts with a '### <title>' line")
		}
		return s.openRule(l)

	case stateExpectDescription:
		if l.kind != lineDescription {
			return syntaxError(l.number, l.indent+1,
				fmt.Sprintf("rule %q must be followed by a '> description' line", s.current.Title),
				"Add a line starting with '>' right after the heading")
		}
		s.current.Description = l.text
		s.state = stateInBody
		return nil

	default:
		switch l.kind {
		case lineHeading:
			s.closeRule()
			return s.openRule(l)
		case lineSeparator:
			if s.side == ast.SideEffect {
				return syntaxError(l.number, l.indent+1,
					fmt.Sprintf("second '->' separator in rule %q (first on line %d)", s.current.Title, s.sepLine),
					"A rule body has one precondition block and one effect block")
			}
			s.side = ast.SideEffect
			s.sepLine = l.number
			return nil
		case lineDescription:
			return syntaxError(l.number, l.indent+1,
				fmt.Sprintf("rule %q already has a description", s.current.Title), "")
		default:
			bl, err := parseBindLine(l)
			if err != nil {
				return err
			}
			s.mergeBind(l.number, bl)
			return nil
		}
	}
}

// finish handles end of input.
func (s *scanner) finish() *simErrors.Error {
	switch s.state {
	case stateExpectDescription:
		return syntaxError(s.current.Location.Line, 0,
			fmt.Sprintf("rule %q ends without a '> description' line", s.current.Title),
			"Add a line starting with '>' right after the heading")
	case stateInBody:
		s.closeRule()
	}
	return nil
}

func (s *scanner) openRule(l line) *simErrors.Error {
	if l.text == "" {
		return syntaxError(l.number, l.indent+1,
			"rule heading has no title",
			"Write the rule title after '###'")
	}

	s.current = &ast.Rule{
		Title:    l.text,
		Binds:    []*ast.Bind{},
		Location: ast.Location{File: s.source, Line: l.number, Column: l.indent + 1},
	}
	s.binds = make(map[string]*ast.Bind)
	s.side = ast.SidePrecondition
	s.sepLine = 0
	s.state = stateExpectDescription
	return nil
}

func (s *scanner) closeRule() {
	s.rules = append(s.rules, s.current)
	s.current = nil
	s.binds = nil
}

// mergeBind folds a bind line into the current rule. An entity seen earlier
// in the same rule keeps its first-mention position.
func (s *scanner) mergeBind(lineNo int, bl *bindLine) {
	bind, ok := s.binds[bl.entity]
	if !ok {
		bind = ast.NewBind(bl.entity, ast.Location{File: s.source, Line: lineNo, Column: bl.column})
		s.binds[bl.entity] = bind
		s.current.Binds = append(s.current.Binds, bind)
	}

	include, exclude := bind.Include(s.side), bind.Exclude(s.side)
	for _, tag := range bl.tags {
		if tag.prefix == '+' {
			include.Add(tag.name)
		} else {
			exclude.Add(tag.name)
		}
	}
}

// Package parser turns rule documents into RuleSets.
//
// A rule document is line oriented:
//
//	### Thing and other
//	> {thing} does {other}
//	    thing +thing -nothing
//	    other +othing +many -nother -woo
//	    ->
//	    thing +adds -removes
//	    other +yes +also -no -nope
//
// "###" opens a rule and carries its title. The next non-blank line must
// start with ">" and carries the description. Bind lines name an entity
// followed by "+tag" / "-tag" tokens; those before the "->" separator are
// requirements and prohibitions, those after it are additions and removals.
// Blank lines are ignored everywhere and indentation is not significant.
//
// # Basic Usage
//
//	rs, err := parser.ParseString(text)
//	if err != nil {
//	    // err is an *errors.Error of type "syntax" with the failing line
//	}
//
// Parse a file with size limits and error context:
//
//	p := parser.NewParser().WithMaxSize(1 << 20)
//	rs, err := p.Parse("rules/social.md")
//
// # Failure Model
//
// Parsing is all or nothing. The first malformed line aborts the scan and
// no rules are returned, even those that were complete before the error.
//
// # Implementation
//
// Lines are classified (blank, heading, description, separator, body) and
// fed to a three-state machine: expect-heading, expect-description and
// in-body. The machine owns all intermediate state, so a Parser is safe for
// concurrent use.
package parser

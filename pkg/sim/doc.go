// Package sim parses and lints the simulation rule language.
//
// A rule document is a markdown-like list of rules. Each rule has a title,
// a description, and an optional body binding entities to tag conditions
// and tag effects:
//
//	### Thing and other
//	> {thing} does {other}
//	    thing +thing -nothing
//	    other +othing +many -nother -woo
//	    ->
//	    thing +adds -removes
//	    other +yes +also -no -nope
//
// Lines before "->" are preconditions: "+tag" is required, "-tag" is
// prohibited. Lines after it are effects: "+tag" is added, "-tag" removed.
//
// # Architecture
//
// The package is organized into subpackages:
//
// - ast: the parsed data model (RuleSet, Rule, Bind, TagSet)
// - parser: the line-oriented parser
// - validator: lint checks over a parsed RuleSet
// - errors: rich error types with line numbers and suggestions
// - encoding: JSON, text and YAML serializations of parse results
//
// # Basic Usage
//
//	rs, err := sim.ParseString(text)
//	if err != nil {
//	    var perr *errors.Error
//	    if errors.As(err, &perr) {
//	        fmt.Println("failed at line", perr.Line())
//	    }
//	    return err
//	}
//	for _, rule := range rs.Rules {
//	    fmt.Println(rule.Title, len(rule.Binds))
//	}
//
// Parsing is all-or-nothing. A document with any malformed line yields no
// rules at all.
package sim

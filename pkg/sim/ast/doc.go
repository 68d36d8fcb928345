// Package ast defines the data model produced by the rule parser.
//
// A rule document is a sequence of rules. Each rule has a title, a
// description and a list of binds; a bind records, for one entity, the tags
// the rule requires or prohibits before it fires and the tags it adds or
// removes when it does:
//
//	### Thing and other
//	> {thing} does {other}
//	    thing +thing -nothing
//	    ->
//	    thing +adds -removes
//
// # Core Types
//
// RuleSet: ordered rules of one document
//
// Rule: title, description, binds in first-mention order
//
// Bind: Required / Prohibited / Adds / Removes tag sets of one entity
//
// TagSet: unordered set of tag names
//
// Location: source location (file, line, column)
//
// Nodes are plain values. Once a parse returns a RuleSet nothing mutates it,
// so it may be shared between goroutines freely.
package ast

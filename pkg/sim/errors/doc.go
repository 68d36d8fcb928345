// Package errors provides rich error types for rule parsing and linting.
//
// The error types include source location, context, and suggestions to help
// authors find and fix mistakes in rule documents quickly.
//
// # Error Types
//
// ErrorTypeSyntax: the document does not follow the grammar. This is the
// only error the parser returns for well-read input.
//
// ErrorTypeStructural: lint findings about whole rules (duplicate titles)
//
// ErrorTypeSemantic: lint findings about binds (contradictions, no-op effects)
//
// ErrorTypeIO: file access errors
//
// # Error Format
//
//	[syntax] tag "many" is missing a '+' or '-' prefix
//	  --> rules/social.md:4:19
//	  |
//	   3 | > {thing} does {other}
//	-> 4 |     other +othing many
//	     |                   ^
//	  |
//	  = suggestion: Prefix tag 'many' with '+' (has/adds) or '-' (lacks/removes)
//
// Use IsParseError to tell a grammar failure apart from other errors.
package errors

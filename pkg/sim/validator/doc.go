// Package validator lints parsed rule sets.
//
// Parsing only checks the grammar. The validator looks at what the rules
// say and reports problems a grammar cannot see:
//
// Structural (per rule):
//   - duplicate rule titles (error)
//   - empty descriptions (warning)
//
// Semantic (per bind):
//   - a tag both required and prohibited: the rule can never fire (error)
//   - a tag both added and removed (error)
//   - adding a tag that is already required (warning)
//   - removing a tag that is already prohibited (warning)
//   - an entity that appears only in the effect block (warning)
//
// # Usage
//
//	v := validator.NewValidator().WithStrictMode(strict)
//	for _, f := range v.Lint(rs).Errors {
//	    fmt.Println(f.Error())
//	}
//
//	if err := v.Validate(rs); err != nil {
//	    // *errors.ErrorList of error-severity findings
//	}
//
// Validation never changes whether a document parses.
package validator

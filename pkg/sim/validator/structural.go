package validator

import (
	"fmt"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// StructuralValidator checks rule-level properties: unique titles and
// non-empty descriptions.
// It holds no state and is safe for concurrent use.
type StructuralValidator struct{}

// NewStructuralValidator creates a new structural validator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Check returns every structural finding for the rule set.
func (v *StructuralValidator) Check(rs *ast.RuleSet) *simErrors.ErrorList {
	errs := simErrors.NewErrorList()

	seen := make(map[string]*ast.Rule, len(rs.Rules))
	for _, rule := range rs.Rules {
		if first, ok := seen[rule.Title]; ok {
			errs.AddErrorWithSuggestion(
				simErrors.ErrorTypeStructural,
				fmt.Sprintf("Duplicate rule title %q (first defined at %s)", rule.Title, first.Location),
				rule.Location,
				"Give every rule a distinct title",
			)
		} else {
			seen[rule.Title] = rule
		}

		if rule.Description == "" {
			errs.AddWarning(
				simErrors.ErrorTypeStructural,
				fmt.Sprintf("Rule %q has an empty description", rule.Title),
				rule.Location,
				"Describe what happens, e.g. '> {a} greets {b}'",
			)
		}
	}

	return errs
}

// Validate performs structural validation and returns an error list or nil.
func (v *StructuralValidator) Validate(rs *ast.RuleSet) error {
	return v.Check(rs).ToError()
}

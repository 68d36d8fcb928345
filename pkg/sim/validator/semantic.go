package validator

import (
	"fmt"
	"strings"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// SemanticValidator checks the tag sets of each bind for contradictions
// and effects that cannot change anything.
// It holds no state and is safe for concurrent use.
type SemanticValidator struct{}

// NewSemanticValidator creates a new semantic validator.
func NewSemanticValidator() *SemanticValidator {
	return &SemanticValidator{}
}

// Check returns every semantic finding for the rule set.
func (v *SemanticValidator) Check(rs *ast.RuleSet) *simErrors.ErrorList {
	w := &semanticWalk{errors: simErrors.NewErrorList()}
	_ = ast.Walk(rs, w)
	return w.errors
}

// Validate performs semantic validation and returns an error list or nil.
func (v *SemanticValidator) Validate(rs *ast.RuleSet) error {
	return v.Check(rs).ToError()
}

// semanticWalk collects the findings of a single Check call.
type semanticWalk struct {
	errors *simErrors.ErrorList
}

func (v *semanticWalk) VisitRuleSet(*ast.RuleSet) error { return nil }

func (v *semanticWalk) VisitRule(*ast.Rule) error { return nil }

func (v *semanticWalk) VisitBind(rule *ast.Rule, b *ast.Bind) error {
	// A rule that requires and prohibits the same tag can never fire.
	if tags := b.Required.Intersect(b.Prohibited); len(tags) > 0 {
		v.errors.AddErrorWithSuggestion(
			simErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q: %s both requires and prohibits %s", rule.Title, b.Entity, quoteAll(tags)),
			b.Location,
			"Remove either the '+' or the '-' form of the tag",
		)
	}

	if tags := b.Adds.Intersect(b.Removes); len(tags) > 0 {
		v.errors.AddErrorWithSuggestion(
			simErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q: %s both adds and removes %s", rule.Title, b.Entity, quoteAll(tags)),
			b.Location,
			"An effect may add or remove a tag, not both",
		)
	}

	if tags := b.Adds.Intersect(b.Required); len(tags) > 0 {
		v.errors.AddWarning(
			simErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q: %s already has %s, adding it changes nothing", rule.Title, b.Entity, quoteAll(tags)),
			b.Location,
			"Drop the tag from the effect block",
		)
	}

	if tags := b.Removes.Intersect(b.Prohibited); len(tags) > 0 {
		v.errors.AddWarning(
			simErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q: %s already lacks %s, removing it changes nothing", rule.Title, b.Entity, quoteAll(tags)),
			b.Location,
			"Drop the tag from the effect block",
		)
	}

	if !b.HasPrecondition() && b.HasEffect() {
		v.errors.AddWarning(
			simErrors.ErrorTypeSemantic,
			fmt.Sprintf("Rule %q: %s appears only after '->' and matches any entity", rule.Title, b.Entity),
			b.Location,
			simErrors.SuggestName(b.Entity, rule.Entities()),
		)
	}

	return nil
}

func quoteAll(tags []string) string {
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return strings.Join(quoted, ", ")
}

package validator

import (
	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// Validator is the main validator that orchestrates all lint passes.
// It runs structural and semantic validation in sequence.
type Validator struct {
	structural *StructuralValidator
	semantic   *SemanticValidator
	strictMode bool
}

// NewValidator creates a new validator with all passes.
func NewValidator() *Validator {
	return &Validator{
		structural: NewStructuralValidator(),
		semantic:   NewSemanticValidator(),
	}
}

// WithStrictMode makes warnings fail validation.
func (v *Validator) WithStrictMode(strict bool) *Validator {
	v.strictMode = strict
	return v
}

// Clone returns an independent copy, so per-call options do not leak into
// a shared validator.
func (v *Validator) Clone() *Validator {
	c := *v
	return &c
}

// Lint runs every pass and returns all findings, warnings included, in
// rule order. In strict mode warnings are reported with error severity.
func (v *Validator) Lint(rs *ast.RuleSet) *simErrors.ErrorList {
	findings := simErrors.NewErrorList()

	if errList := v.structural.Check(rs); errList != nil {
		findings.Errors = append(findings.Errors, errList.Errors...)
	}
	if errList := v.semantic.Check(rs); errList != nil {
		findings.Errors = append(findings.Errors, errList.Errors...)
	}

	if v.strictMode {
		for _, f := range findings.Errors {
			f.Severity = simErrors.SeverityError
		}
	}

	return findings
}

// Validate returns an *errors.ErrorList holding only error-severity findings,
// or nil when the rule set is acceptable.
func (v *Validator) Validate(rs *ast.RuleSet) error {
	findings := v.Lint(rs)

	errs := simErrors.NewErrorList()
	errs.Errors = append(errs.Errors, findings.BySeverity(simErrors.SeverityError)...)
	return errs.ToError()
}

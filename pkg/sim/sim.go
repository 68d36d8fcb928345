package sim

import (
	"dorfbook/simparse/pkg/sim/ast"
	"dorfbook/simparse/pkg/sim/parser"
	"dorfbook/simparse/pkg/sim/validator"
)

// ParseAndValidate parses a rule file and rejects it if lint reports any
// error-severity finding. Warnings do not fail.
func ParseAndValidate(path string) (*ast.RuleSet, error) {
	rs, err := parser.NewParser().Parse(path)
	if err != nil {
		return nil, err
	}

	if err := validator.NewValidator().Validate(rs); err != nil {
		return nil, err
	}

	return rs, nil
}

// ParseAndValidateBytes is ParseAndValidate for in-memory documents.
func ParseAndValidateBytes(data []byte, sourcePath string) (*ast.RuleSet, error) {
	rs, err := parser.NewParser().ParseBytes(data, sourcePath)
	if err != nil {
		return nil, err
	}

	if err := validator.NewValidator().Validate(rs); err != nil {
		return nil, err
	}

	return rs, nil
}

// Parse parses one or more rule files without linting. Rules from several
// files are concatenated in argument order; any failing file fails all.
func Parse(paths ...string) (*ast.RuleSet, error) {
	return parser.NewParser().ParseMulti(paths)
}

// ParseString parses rule text. It is the all-or-nothing contract: a rule
// set on success, or a single error carrying the offending line.
func ParseString(text string) (*ast.RuleSet, error) {
	return parser.ParseString(text)
}

// Validate lints a parsed rule set and returns only error-severity findings.
func Validate(rs *ast.RuleSet) error {
	return validator.NewValidator().Validate(rs)
}

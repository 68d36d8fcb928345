package encoding

import (
	"encoding/json"
	"io"

	"dorfbook/simparse/pkg/sim/ast"
)

// JSONEncoder writes {"rules": [...]} objects. A failed parse is the JSON
// literal null.
type JSONEncoder struct {
	Indent bool
}

// Name implements Encoder.
func (e *JSONEncoder) Name() string { return "json" }

// ContentType implements Encoder.
func (e *JSONEncoder) ContentType() string { return "application/json" }

// Encode implements Encoder.
func (e *JSONEncoder) Encode(w io.Writer, rs *ast.RuleSet) error {
	return e.write(w, NewDocument(rs))
}

// EncodeFailure implements Encoder.
func (e *JSONEncoder) EncodeFailure(w io.Writer, _ error) error {
	return e.write(w, nil)
}

func (e *JSONEncoder) write(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	if e.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

package encoding

import (
	"io"

	"gopkg.in/yaml.v3"

	"dorfbook/simparse/pkg/sim/ast"
)

// YAMLEncoder writes the Document shape as YAML. A failed parse is "null".
type YAMLEncoder struct{}

// Name implements Encoder.
func (e *YAMLEncoder) Name() string { return "yaml" }

// ContentType implements Encoder.
func (e *YAMLEncoder) ContentType() string { return "application/yaml" }

// Encode implements Encoder.
func (e *YAMLEncoder) Encode(w io.Writer, rs *ast.RuleSet) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(rs)); err != nil {
		return err
	}
	return enc.Close()
}

// EncodeFailure implements Encoder.
func (e *YAMLEncoder) EncodeFailure(w io.Writer, _ error) error {
	_, err := io.WriteString(w, "null\n")
	return err
}

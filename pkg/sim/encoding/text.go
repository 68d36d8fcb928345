package encoding

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// TextEncoder writes the flattened line-record protocol:
//
//	rule Thing and other
//	description {thing} does {other}
//	bind thing
//	required thing
//	prohibited nothing
//	adds adds
//	removes removes
//	end
//
// Every record is one line: a keyword, a space, and the payload. Tag lists
// are sorted and space separated; empty lists are omitted. A failed parse is
// a single "error <line> <message>" record.
type TextEncoder struct{}

// Name implements Encoder.
func (e *TextEncoder) Name() string { return "text" }

// ContentType implements Encoder.
func (e *TextEncoder) ContentType() string { return "text/plain; charset=utf-8" }

// Encode implements Encoder.
func (e *TextEncoder) Encode(w io.Writer, rs *ast.RuleSet) error {
	bw := bufio.NewWriter(w)

	for _, rule := range rs.Rules {
		fmt.Fprintf(bw, "rule %s\n", rule.Title)
		fmt.Fprintf(bw, "description %s\n", rule.Description)
		for _, b := range rule.Binds {
			fmt.Fprintf(bw, "bind %s\n", b.Entity)
			writeTags(bw, "required", b.Required)
			writeTags(bw, "prohibited", b.Prohibited)
			writeTags(bw, "adds", b.Adds)
			writeTags(bw, "removes", b.Removes)
		}
		bw.WriteString("end\n")
	}

	return bw.Flush()
}

// EncodeFailure implements Encoder.
func (e *TextEncoder) EncodeFailure(w io.Writer, err error) error {
	line := 0
	msg := "parse failed"

	var perr *simErrors.Error
	if simErrors.As(err, &perr) {
		line = perr.Line()
		msg = perr.Message
	} else if err != nil {
		msg = err.Error()
	}

	_, werr := fmt.Fprintf(w, "error %d %s\n", line, strings.ReplaceAll(msg, "\n", " "))
	return werr
}

func writeTags(w *bufio.Writer, keyword string, tags ast.TagSet) {
	if tags.Len() == 0 {
		return
	}
	fmt.Fprintf(w, "%s %s\n", keyword, strings.Join(tags.Sorted(), " "))
}

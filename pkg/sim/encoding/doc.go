// Package encoding serializes parse results for transport.
//
// The parser produces an in-memory ast.RuleSet; how that reaches a caller is
// an independent choice. Three encoders are registered by default:
//
//   - "json": {"rules":[{"title","description","binds":[...]}]}, failure is null
//   - "text": one record per line (rule / description / bind / required /
//     prohibited / adds / removes / end), failure is "error <line> <message>"
//   - "yaml": the JSON shape rendered as YAML, failure is null
//
// Select one by name:
//
//	enc, err := encoding.Lookup("text")
//	if err != nil {
//	    return err
//	}
//	if rs, perr := parser.ParseString(body); perr != nil {
//	    enc.EncodeFailure(w, perr)
//	} else {
//	    enc.Encode(w, rs)
//	}
package encoding

package encoding

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"dorfbook/simparse/pkg/sim/ast"
)

// Encoder serializes parse results into one wire representation.
// The parser never knows which encoder is in use.
type Encoder interface {
	// Name is the registry key ("json", "text", "yaml").
	Name() string

	// ContentType is the MIME type of the encoded output.
	ContentType() string

	// Encode writes a successfully parsed rule set.
	Encode(w io.Writer, rs *ast.RuleSet) error

	// EncodeFailure writes the failure signal for a document that did not parse.
	EncodeFailure(w io.Writer, err error) error
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Encoder{}
)

// Register makes an encoder available by name. Registering a name twice
// replaces the earlier encoder.
func Register(e Encoder) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[e.Name()] = e
}

// Lookup returns the encoder registered under name.
func Lookup(name string) (Encoder, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", name, namesLocked())
	}
	return e, nil
}

// Names returns the registered encoder names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(&JSONEncoder{})
	Register(&TextEncoder{})
	Register(&YAMLEncoder{})
}

// Document is the transport-neutral shape shared by the JSON and YAML encoders.
type Document struct {
	Rules []RuleDoc `json:"rules" yaml:"rules"`
}

// RuleDoc is one rule in a Document.
type RuleDoc struct {
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Binds       []BindDoc `json:"binds" yaml:"binds"`
}

// BindDoc is one bind in a RuleDoc. Tag lists are sorted.
type BindDoc struct {
	Entity     string   `json:"entity" yaml:"entity"`
	Required   []string `json:"required" yaml:"required"`
	Prohibited []string `json:"prohibited" yaml:"prohibited"`
	Adds       []string `json:"adds" yaml:"adds"`
	Removes    []string `json:"removes" yaml:"removes"`
}

// NewDocument converts a rule set into its Document form. Empty collections
// are kept as empty lists rather than nulls.
func NewDocument(rs *ast.RuleSet) *Document {
	doc := &Document{Rules: make([]RuleDoc, 0, len(rs.Rules))}
	for _, rule := range rs.Rules {
		rd := RuleDoc{
			Title:       rule.Title,
			Description: rule.Description,
			Binds:       make([]BindDoc, 0, len(rule.Binds)),
		}
		for _, b := range rule.Binds {
			rd.Binds = append(rd.Binds, BindDoc{
				Entity:     b.Entity,
				Required:   b.Required.Sorted(),
				Prohibited: b.Prohibited.Sorted(),
				Adds:       b.Adds.Sorted(),
				Removes:    b.Removes.Sorted(),
			})
		}
		doc.Rules = append(doc.Rules, rd)
	}
	return doc
}

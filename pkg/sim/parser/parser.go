package parser

import (
	"fmt"
	"os"

	"dorfbook/simparse/pkg/sim/ast"
	simErrors "dorfbook/simparse/pkg/sim/errors"
)

// DefaultMaxSize is the default input size limit applied by Parser.
const DefaultMaxSize = 10 * 1024 * 1024

// MemorySource is the source name used for documents that did not come from a file.
const MemorySource = "memory://rules"

// Parser parses rule documents into RuleSets.
// A Parser only holds configuration; one value can serve concurrent callers.
type Parser struct {
	maxSize      int64 // Maximum input size in bytes (0 = unlimited)
	contextLines int   // Source lines shown around a parse error
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxSize:      DefaultMaxSize,
		contextLines: 2,
	}
}

// WithMaxSize sets the maximum input size. Zero disables the limit.
func (p *Parser) WithMaxSize(size int64) *Parser {
	p.maxSize = size
	return p
}

// WithContextLines sets how many lines of source surround an error. Zero
// disables context extraction.
func (p *Parser) WithContextLines(n int) *Parser {
	p.contextLines = n
	return p
}

// ParseString parses a whole rule document. It is the grammar contract with
// no size limit and no context decoration: the result is either a complete
// RuleSet or a syntax *errors.Error carrying the failing line.
func ParseString(text string) (*ast.RuleSet, error) {
	rs, err := newScanner("").run(text)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// ParseString parses an in-memory document named MemorySource.
func (p *Parser) ParseString(text string) (*ast.RuleSet, error) {
	return p.ParseBytes([]byte(text), MemorySource)
}

// ParseBytes parses a rule document held in memory. sourcePath names the
// document in locations and error messages.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.RuleSet, error) {
	if p.maxSize > 0 && int64(len(data)) > p.maxSize {
		return nil, &simErrors.Error{
			Type:     simErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Data size %d exceeds maximum %d bytes", len(data), p.maxSize),
			Location: ast.Location{File: sourcePath},
		}
	}

	text := string(data)
	rs, err := newScanner(sourcePath).run(text)
	if err != nil {
		if p.contextLines > 0 {
			simErrors.WithContext(err, text, p.contextLines)
		}
		return nil, err
	}
	return rs, nil
}

// Document is one named rule document held in memory.
type Document struct {
	Path string
	Data []byte
}

// ReadFile reads the rule file at path, refusing files larger than the
// parser's size limit before reading them.
func (p *Parser) ReadFile(path string) ([]byte, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &simErrors.Error{
			Type:     simErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to access file: %v", err),
			Location: ast.Location{File: path},
		}
	}

	if p.maxSize > 0 && fileInfo.Size() > p.maxSize {
		return nil, &simErrors.Error{
			Type:     simErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("File size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxSize),
			Location: ast.Location{File: path},
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &simErrors.Error{
			Type:     simErrors.ErrorTypeIO,
			Message:  fmt.Sprintf("Failed to read file: %v", err),
			Location: ast.Location{File: path},
		}
	}
	return data, nil
}

// Parse reads and parses the rule file at path.
// It returns an io error if the file cannot be read or is too large, and a
// syntax error if the document does not follow the grammar.
func (p *Parser) Parse(path string) (*ast.RuleSet, error) {
	data, err := p.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseBytes(data, path)
}

// ParseDocuments parses docs and concatenates their rules in order. The
// batch is all or nothing: the first failing document fails it, and its
// error locates the failure in that document.
func (p *Parser) ParseDocuments(docs []Document) (*ast.RuleSet, error) {
	switch len(docs) {
	case 0:
		return nil, &simErrors.Error{
			Type:    simErrors.ErrorTypeIO,
			Message: "No rule documents provided",
		}
	case 1:
		return p.ParseBytes(docs[0].Data, docs[0].Path)
	}

	merged := &ast.RuleSet{Source: docs[0].Path}
	for _, doc := range docs {
		rs, err := p.ParseBytes(doc.Data, doc.Path)
		if err != nil {
			return nil, err
		}
		merged.Rules = append(merged.Rules, rs.Rules...)
	}
	return merged, nil
}

// ParseMulti parses several rule files and concatenates their rules in
// argument order. Any failing file fails the whole batch.
func (p *Parser) ParseMulti(paths []string) (*ast.RuleSet, error) {
	if len(paths) == 0 {
		return nil, &simErrors.Error{
			Type:    simErrors.ErrorTypeIO,
			Message: "No rule files provided",
		}
	}

	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		data, err := p.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{Path: path, Data: data})
	}
	return p.ParseDocuments(docs)
}

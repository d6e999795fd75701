package rstdoc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

// knownIrregularities are literal texts that break the grid table grammar
// in the published manuals, with the prose that replaces them.
var knownIrregularities = strings.NewReplacer(
	"Vsync|Hsync", "Vsync or Hsync",
)

// Parser represents a register manual parser
type Parser struct {
	parser *participle.Parser[Document]
}

// NewParser creates a new register manual parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[Document](
		participle.Lexer(DocLexer),
		participle.Elide("Newline", "Whitespace", "Border", "Directive", "Option"),
		participle.UseLookahead(3),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// ParseString parses a manual page. name is used in error messages only.
func (p *Parser) ParseString(name, input string) (*Document, error) {
	input = knownIrregularities.Replace(input)
	if !strings.HasSuffix(input, "\n") {
		input += "\n"
	}

	doc, err := p.parser.ParseString(name, input)
	if err != nil {
		line := 0
		var perr participle.Error
		if errors.As(err, &perr) {
			line = perr.Position().Line
		}
		return nil, &regmodel.SourceError{
			File: name,
			Rule: ruleAt(input, line),
			Line: line,
			Err:  fmt.Errorf("%w: %v", regmodel.ErrMalformedTable, err),
		}
	}
	return doc, nil
}

// ParseFile parses a manual page from a file path
func (p *Parser) ParseFile(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &regmodel.SourceError{
			File: filename,
			Err:  fmt.Errorf("%w: %v", regmodel.ErrSourceUnavailable, err),
		}
	}
	return p.ParseString(filename, string(data))
}

// Fragment parses the page at filename into canonical registers.
func (p *Parser) Fragment(filename string) (*Fragment, error) {
	doc, err := p.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return doc.Fragment(filename)
}

// FragmentFromString is Fragment for in-memory sources.
func (p *Parser) FragmentFromString(name, input string) (*Fragment, error) {
	doc, err := p.ParseString(name, input)
	if err != nil {
		return nil, err
	}
	return doc.Fragment(name)
}

// ruleAt names the grammar rule that owns the given source line.
func ruleAt(input string, line int) string {
	lines := strings.Split(input, "\n")
	if line < 1 || line > len(lines) {
		return "doc_file"
	}
	text := strings.TrimSpace(lines[line-1])
	switch {
	case strings.HasPrefix(text, "|"), strings.HasPrefix(text, "+"):
		return "table"
	case strings.HasPrefix(text, "**Address"):
		return "address"
	case text == "":
		return "doc_file"
	default:
		return "register"
	}
}

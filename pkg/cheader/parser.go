package cheader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

// Parser represents a register header parser
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new header parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(HeaderLexer),
		participle.Elide("Preproc", "LineComment", "Whitespace"),
		participle.UseLookahead(6),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Parser{parser: parser}, nil
}

// ParseString parses header source. name is used in error messages only.
func (p *Parser) ParseString(name, input string) (*File, error) {
	file, err := p.parser.ParseString(name, input)
	if err != nil {
		return nil, grammarError(name, input, err)
	}
	return file, nil
}

// ParseFile parses a header from a file path
func (p *Parser) ParseFile(filename string) (*File, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &regmodel.SourceError{
			File: filename,
			Err:  fmt.Errorf("%w: %v", regmodel.ErrSourceUnavailable, err),
		}
	}
	return p.ParseString(filename, string(data))
}

// Registers parses the header at filename and converts it to canonical
// registers.
func (p *Parser) Registers(filename string) ([]regmodel.Register, error) {
	file, err := p.ParseFile(filename)
	if err != nil {
		return nil, err
	}
	return file.Registers(filename)
}

// RegistersFromString is Registers for in-memory sources.
func (p *Parser) RegistersFromString(name, input string) ([]regmodel.Register, error) {
	file, err := p.ParseString(name, input)
	if err != nil {
		return nil, err
	}
	return file.Registers(name)
}

// grammarError converts a participle failure into a MalformedHeader error
// naming the rule whose text sits at the failing position.
func grammarError(name, input string, err error) error {
	line := 0
	var perr participle.Error
	if errors.As(err, &perr) {
		line = perr.Position().Line
	}
	return &regmodel.SourceError{
		File: name,
		Rule: ruleAt(input, line),
		Line: line,
		Err:  fmt.Errorf("%w: %v", regmodel.ErrMalformedHeader, err),
	}
}

// ruleAt names the grammar rule that owns the given source line.
func ruleAt(input string, line int) string {
	lines := strings.Split(input, "\n")
	if line < 1 || line > len(lines) {
		return "reg_file"
	}
	text := strings.TrimSpace(lines[line-1])
	switch {
	case strings.Contains(text, "reserved") && strings.HasPrefix(text, "/*"):
		return "reserved_register"
	case strings.HasPrefix(text, "uint8_t") && strings.Contains(text, "["):
		return "reserved_register"
	case strings.HasPrefix(text, "/*") && strings.Contains(text, "["):
		return "field"
	case strings.Contains(text, "/*") && strings.Contains(text, "["):
		return "field"
	case strings.HasPrefix(text, "/*"), strings.HasPrefix(text, "union"),
		strings.HasPrefix(text, "}"), strings.Contains(text, "WORD"):
		return "register"
	case strings.HasPrefix(text, "struct"):
		return "peripheral"
	default:
		return "registers"
	}
}

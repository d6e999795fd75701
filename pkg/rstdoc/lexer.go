package rstdoc

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// DocLexer defines the lexical structure of register manual pages.
// The lexer is line oriented: each token is a whole line (or the rest of
// one after indentation), and grid table rows are classified here so the
// grammar can tell continuation rows from field rows.
var DocLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},

	// **Address：**  0x2000a000
	{Name: "Address", Pattern: `\*\*Address[^\n]*`},

	// Grid table borders: +----+----+, +====+====+, +    +----+
	{Name: "Border", Pattern: `\+[-=+ \t]*\+[ \t]*`},

	// A row whose leading cells are blank and that carries one trailing
	// cell of text. Must precede Row.
	{Name: "ContRow", Pattern: `\|(?:[ \t]*\|)+[^|\n]*\|[ \t]*\r?\n`},
	{Name: "Row", Pattern: `\|[^\n]*`},

	// Directives (.. figure::, .. table::) and their :option: lines
	{Name: "Directive", Pattern: `\.\.[ \t][^\n]*`},
	{Name: "Option", Pattern: `:[A-Za-z_-]+:[^\n]*`},

	// Section adornment under a title
	{Name: "Underline", Pattern: "[-=~^\"'`*#_+.:]{3,}[ \t]*\\r?\\n"},

	// Anything else on a line
	{Name: "Line", Pattern: `[^\n]+`},
})

package cheader

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// HeaderLexer tokenizes vendor register headers. Comment delimiters are
// real tokens because the register and field annotations live inside
// block comments.
var HeaderLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Preprocessor lines (#include, #define, #ifndef ...)
	{Name: "Preproc", Pattern: `#[^\n]*`},

	// C++ style comments carry no layout information
	{Name: "LineComment", Pattern: `//[^\n]*`},

	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},

	// Block comment delimiters, including /** and ****/ runs
	{Name: "OpenComment", Pattern: `/\*+`},
	{Name: "CloseComment", Pattern: `\*+/`},

	// Literals
	{Name: "Hex", Pattern: `0[xX][0-9a-fA-F]+`},
	{Name: "Int", Pattern: `[0-9]+`},

	// Identifiers and keywords (struct, union, reserved, access tokens)
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},

	// Any other single character; licence banners contain all sorts
	{Name: "Punct", Pattern: `[^\sa-zA-Z0-9_]`},
})

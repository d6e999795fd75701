package rstdoc

import "github.com/alecthomas/participle/v2/lexer"

// Document is a register manual page: free text up to the first register
// section, then one section per register.
type Document struct {
	Preamble  []string    `( @!( Line Underline Address ) )*`
	Registers []*Register `@@*`
}

// Register is one register section.
//
//	utx_config
//	----------
//
//	**Address：**  0x2000a000
//
//	.. table:: utx_config
//
//	    +----------+--------------+--------+--------+-------------+
//	    | Bit      | Name         |Type    | Reset  | Description |
//	    +==========+==============+========+========+=============+
//	    | 31:16    | cr_utx_len   | r/w    | 16'd0  | Length ...  |
//	    +----------+--------------+--------+--------+-------------+
type Register struct {
	Pos     lexer.Position
	Title   string `@Line Underline`
	Address string `@Address`
	Header  string `@Row`
	Rows    []*Row `@@*`
}

// Row is a table row after the header: either a field row or a
// continuation of the previous field's description.
type Row struct {
	Pos          lexer.Position
	Continuation string `  @ContRow`
	Cells        string `| @Row`
}

// IsContinuation reports whether the row extends the previous field.
func (r *Row) IsContinuation() bool {
	return r.Continuation != ""
}

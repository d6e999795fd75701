package cheader

import "github.com/alecthomas/participle/v2/lexer"

// File is a complete register header. Everything before the first struct
// (licence banner, offset #defines) is swallowed by Preamble, everything
// after the struct (typedefs, #endif) by Trailer.
type File struct {
	Preamble   []string    `( @!( "struct" Ident "{" ) )*`
	Peripheral *Peripheral `@@`
	Trailer    []string    `@( Ident | Int | Hex | Punct | OpenComment | CloseComment )*`
}

// Peripheral is the register struct.
// Example: struct uart_reg { ... };
type Peripheral struct {
	Pos      lexer.Position
	TypeName string   `"struct" @Ident "{"`
	Entries  []*Entry `@@* "}" ";"`
}

// Entry is one member of the register struct.
type Entry struct {
	Reserved *ReservedRegister `  @@`
	Register *Register         `| @@`
}

// ReservedRegister is address-space padding.
// Example: /* 0x4  reserved */ uint8_t RESERVED0x4[4];
type ReservedRegister struct {
	Pos    lexer.Position
	Offset string `OpenComment @Hex ":"? "reserved" CloseComment`
	Type   string `@Ident`
	Name   string `@Ident "[" ( Int | Hex ) "]" ";"`
}

// Register is a union of a bitfield struct and the raw word.
//
//	/* 0x0 : utx_config */
//	union {
//	    struct {
//	        uint32_t cr_utx_en : 1; /* [    0],        r/w,        0x0 */
//	    }BF;
//	    uint32_t WORD;
//	} utx_config;
type Register struct {
	Pos    lexer.Position
	Offset string   `OpenComment @Hex ":"`
	Name   string   `@Ident CloseComment`
	Fields []*Field `"union" "{" "struct" "{" @@* "}" Ident ";"`
	Word   string   `Ident @Ident ";" "}"`
	Member string   `@Ident ";"`
}

// Field is one bitfield member with its annotation comment.
type Field struct {
	Pos      lexer.Position
	Type     string    `@Ident`
	Name     string    `@Ident ":"`
	Size     int       `@Int ";"`
	Position *Position `OpenComment "[" @@ "]" ","`
	Access   string    `@Ident ( @"/" @Ident )? ","`
	Mask     string    `@( Hex | Int | Ident )+ CloseComment`
}

// Position is either a start:end pair or a single bit. The start token of
// a pair is the most significant bit.
type Position struct {
	Start *uint32 `( @Int ":"`
	End   *uint32 `  @Int )`
	Bit   *uint32 `| @Int`
}

// Bounds returns the most and least significant bit of the position.
func (p *Position) Bounds() (msb, lsb uint32) {
	if p.Start != nil && p.End != nil {
		return *p.Start, *p.End
	}
	if p.Bit != nil {
		return *p.Bit, *p.Bit
	}
	return 0, 0
}

// Name returns the logical peripheral name: the struct name without its
// four character type suffix (conventionally "_reg").
func (p *Peripheral) Name() string {
	if len(p.TypeName) <= 4 {
		return p.TypeName
	}
	return p.TypeName[:len(p.TypeName)-4]
}

// Registers returns the addressable registers, dropping reserved padding.
func (p *Peripheral) Registers() []*Register {
	var regs []*Register
	for _, e := range p.Entries {
		if e.Register != nil {
			regs = append(regs, e.Register)
		}
	}
	return regs
}

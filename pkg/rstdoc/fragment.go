package rstdoc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

// fieldCells is the column count of a register table:
// Bit | Name | Type | Reset | Description.
const fieldCells = 5

// accessModes is the manual vocabulary. It differs from the header one:
// plain "w" is write-once, and "HwInit" appears as read-only.
var accessModes = regmodel.AccessTable{
	"r/w":    regmodel.ReadWrite,
	"rw":     regmodel.ReadWrite,
	"roc/rw": regmodel.ReadWrite,
	"rwac":   regmodel.ReadWrite,
	"rw1c":   regmodel.ReadWrite,
	"r":      regmodel.ReadOnly,
	"roc":    regmodel.ReadOnly,
	"HwInit": regmodel.ReadOnly,
	"w":      regmodel.WriteOnce,
	"w1c":    regmodel.WriteOnce,
	"w1p":    regmodel.WriteOnce,
	"rsvd":   regmodel.Unspecified,
	"":       regmodel.Unspecified,
}

// AccessMode maps a manual access token to the canonical access mode.
func AccessMode(token string) (regmodel.Access, error) {
	return accessModes.Lookup(token)
}

// Fragment is the register list of one manual page and the base address
// inferred from its first register.
type Fragment struct {
	Registers   []regmodel.Register
	BaseAddress uint64
}

// Fragment converts the parsed page. Offsets are relative to the first
// register's address; fields of each register are reversed relative to
// table row order. filename is used in errors only.
func (d *Document) Fragment(filename string) (*Fragment, error) {
	frag := &Fragment{}

	var base uint32
	for i, reg := range d.Registers {
		title := strings.TrimSpace(reg.Title)
		address, err := ParseAddress(addressValue(reg.Address))
		if err != nil {
			return nil, &regmodel.SourceError{File: filename, Rule: "address", Line: reg.Pos.Line, Err: err}
		}
		if i == 0 {
			base = address
		}
		if address < base {
			return nil, &regmodel.SourceError{
				File: filename, Rule: "address", Line: reg.Pos.Line,
				Err: fmt.Errorf("%w: register %s at 0x%08X below base 0x%08X", regmodel.ErrMalformedTable, title, address, base),
			}
		}

		fields, err := reg.fields()
		if err != nil {
			return nil, withFile(err, filename, reg.Pos.Line)
		}

		r, err := regmodel.NewRegister(title, address-base, fields, regmodel.Weak)
		if err != nil {
			return nil, withFile(err, filename, reg.Pos.Line)
		}
		frag.Registers = append(frag.Registers, r)
	}

	frag.BaseAddress = uint64(base)
	return frag, nil
}

func (r *Register) fields() ([]regmodel.Field, error) {
	var fields []regmodel.Field
	for _, row := range r.Rows {
		if row.IsContinuation() {
			if len(fields) == 0 {
				return nil, &regmodel.SourceError{
					Rule: "continuation_row", Line: row.Pos.Line,
					Err: fmt.Errorf("%w: register %s", regmodel.ErrDanglingContinuationRow, strings.TrimSpace(r.Title)),
				}
			}
			cells := splitCells(row.Continuation)
			last := &fields[len(fields)-1]
			last.Description = last.Description + "\n" + cells[len(cells)-1]
			continue
		}

		field, err := fieldFromRow(row)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}

	// Tables list fields high bit first; the model expects the opposite.
	for i, j := 0, len(fields)-1; i < j; i, j = i+1, j-1 {
		fields[i], fields[j] = fields[j], fields[i]
	}
	return fields, nil
}

func fieldFromRow(row *Row) (regmodel.Field, error) {
	cells := splitCells(row.Cells)
	if len(cells) != fieldCells {
		return regmodel.Field{}, &regmodel.SourceError{
			Rule: "field_row", Line: row.Pos.Line,
			Err: fmt.Errorf("%w: expected %d cells, got %d", regmodel.ErrMalformedTable, fieldCells, len(cells)),
		}
	}

	bits, err := ParseBits(cells[0])
	if err != nil {
		return regmodel.Field{}, &regmodel.SourceError{Rule: "bits", Line: row.Pos.Line, Err: err}
	}

	name := cells[1]
	access, err := AccessMode(cells[2])
	if err != nil {
		return regmodel.Field{}, &regmodel.SourceError{
			Rule: "access", Line: row.Pos.Line,
			Err: fmt.Errorf("field %s: %w", name, err),
		}
	}

	// cells[3] is the reset value; it is not carried into the model.
	return regmodel.NewField(name, bits, access, cells[4], regmodel.Weak)
}

// splitCells returns the trimmed cells of a grid table row.
func splitCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	parts := strings.Split(row, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// addressValue extracts the value part of an "**Address：**  value" line.
func addressValue(line string) string {
	rest := strings.TrimPrefix(line, "**Address")
	if i := strings.Index(rest, "**"); i >= 0 {
		rest = rest[i+2:]
	}
	rest = strings.TrimLeft(rest, ":： \t")
	if f := strings.Fields(rest); len(f) > 0 {
		return f[0]
	}
	return ""
}

// ParseAddress parses a register address. It accepts bare hex with an
// optional 0x prefix and sized literals such as 32'h2000A000, where the
// digits after the radix letter are read as hex. Empty text is 0.
func ParseAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	digits := s
	if i := strings.IndexByte(s, '\''); i >= 0 {
		if i+2 > len(s) {
			return 0, fmt.Errorf("%w: address %q", regmodel.ErrMalformedTable, s)
		}
		digits = s[i+2:]
	} else {
		digits = strings.TrimPrefix(strings.TrimPrefix(digits, "0x"), "0X")
	}
	digits = strings.ReplaceAll(digits, "_", "")

	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: address %q", regmodel.ErrMalformedTable, s)
	}
	return uint32(v), nil
}

// ParseBits parses a bit cell: "N", "H:L" or "[H:L]". Empty is bit 0.
func ParseBits(s string) (regmodel.BitRange, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")

	hi, lo, ranged := strings.Cut(s, ":")
	high, err := parseBit(hi)
	if err != nil {
		return regmodel.BitRange{}, err
	}
	if !ranged {
		return regmodel.BitRange{MSB: high, LSB: high}, nil
	}
	low, err := parseBit(lo)
	if err != nil {
		return regmodel.BitRange{}, err
	}
	return regmodel.BitRange{MSB: high, LSB: low}, nil
}

func parseBit(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bit position %q", regmodel.ErrMalformedTable, s)
	}
	return uint32(v), nil
}

// withFile fills in the file and line of a row-level SourceError, or wraps
// any other error in one.
func withFile(err error, filename string, line int) error {
	if serr, ok := err.(*regmodel.SourceError); ok {
		serr.File = filename
		if serr.Line == 0 {
			serr.Line = line
		}
		return serr
	}
	return &regmodel.SourceError{File: filename, Rule: "register", Line: line, Err: err}
}

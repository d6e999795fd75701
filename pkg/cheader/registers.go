package cheader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

// accessModes is the header vocabulary. Tokens are case-sensitive.
var accessModes = regmodel.AccessTable{
	"RW":   regmodel.ReadWrite,
	"rw":   regmodel.ReadWrite,
	"RWAC": regmodel.ReadWrite,
	"RW1C": regmodel.ReadWrite,
	"r/w":  regmodel.ReadWrite,
	"ROC":  regmodel.ReadOnly,
	"RO":   regmodel.ReadOnly,
	"r":    regmodel.ReadOnly,
	"R":    regmodel.ReadOnly,
	"w":    regmodel.WriteOnly,
	"WO":   regmodel.WriteOnly,
	"w1c":  regmodel.WriteOnce,
	"w1p":  regmodel.WriteOnce,
	"rsvd": regmodel.Unspecified,
	"RSVD": regmodel.Unspecified,
	"None": regmodel.Unspecified,
}

// AccessMode maps a header access token to the canonical access mode.
func AccessMode(token string) (regmodel.Access, error) {
	return accessModes.Lookup(token)
}

// Registers converts the parsed struct into canonical registers, in file
// order, with fields in file order. filename is used in errors only.
func (f *File) Registers(filename string) ([]regmodel.Register, error) {
	if f.Peripheral == nil {
		return nil, &regmodel.SourceError{File: filename, Rule: "peripheral", Err: regmodel.ErrMalformedHeader}
	}

	var registers []regmodel.Register
	for _, reg := range f.Peripheral.Registers() {
		r, err := reg.toModel()
		if err != nil {
			return nil, &regmodel.SourceError{File: filename, Rule: "register", Line: reg.Pos.Line, Err: err}
		}
		registers = append(registers, r)
	}
	return registers, nil
}

func (r *Register) toModel() (regmodel.Register, error) {
	offset, err := parseHex(r.Offset)
	if err != nil {
		return regmodel.Register{}, fmt.Errorf("%w: register %s offset %q", regmodel.ErrMalformedHeader, r.Name, r.Offset)
	}

	fields := make([]regmodel.Field, 0, len(r.Fields))
	for _, fd := range r.Fields {
		field, err := fd.toModel()
		if err != nil {
			return regmodel.Register{}, fmt.Errorf("register %s: %w", r.Name, err)
		}
		fields = append(fields, field)
	}

	return regmodel.NewRegister(r.Name, offset, fields, regmodel.Weak)
}

func (f *Field) toModel() (regmodel.Field, error) {
	access, err := AccessMode(f.Access)
	if err != nil {
		return regmodel.Field{}, fmt.Errorf("field %s: %w", f.Name, err)
	}

	msb, lsb := f.Position.Bounds()
	return regmodel.NewField(f.Name, regmodel.BitRange{MSB: msb, LSB: lsb}, access, "", regmodel.Strict)
}

// MaskValue returns the annotated reset mask, or 0 when it does not parse.
// The mask is informational; the bit positions are authoritative.
func (f *Field) MaskValue() uint32 {
	v, err := parseHex(f.Mask)
	if err != nil {
		return 0
	}
	return v
}

func parseHex(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	return uint32(v), err
}

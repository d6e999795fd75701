package cheader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

const ctrlHeader = `
#include "bl808.h"

struct demo_reg {
    /* 0x10 : CTRL */
    union {
        struct {
            uint32_t EN                             : 1; /* [    0],         RW,        0x0 */
        }BF;
        uint32_t WORD;
    } CTRL;
};
`

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	parser, err := NewParser()
	if err != nil {
		t.Fatalf("Failed to create parser: %v", err)
	}
	return parser
}

func TestParseSingleRegister(t *testing.T) {
	parser := newTestParser(t)

	regs, err := parser.RegistersFromString("demo_reg.h", ctrlHeader)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if len(regs) != 1 {
		t.Fatalf("Expected 1 register, got %d", len(regs))
	}

	reg := regs[0]
	if reg.Name != "CTRL" {
		t.Errorf("Expected register name 'CTRL', got '%s'", reg.Name)
	}
	if reg.AddressOffset != 0x10 {
		t.Errorf("Expected offset 0x10, got 0x%X", reg.AddressOffset)
	}
	if len(reg.Fields) != 1 {
		t.Fatalf("Expected 1 field, got %d", len(reg.Fields))
	}

	field := reg.Fields[0]
	if field.Name != "EN" {
		t.Errorf("Expected field name 'EN', got '%s'", field.Name)
	}
	if field.Bits != (regmodel.BitRange{MSB: 0, LSB: 0}) {
		t.Errorf("Expected bits [0:0], got %v", field.Bits)
	}
	if field.Access != regmodel.ReadWrite {
		t.Errorf("Expected ReadWrite, got %v", field.Access)
	}
}

func TestParsePeripheralName(t *testing.T) {
	parser := newTestParser(t)

	file, err := parser.ParseString("demo_reg.h", ctrlHeader)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if file.Peripheral.TypeName != "demo_reg" {
		t.Errorf("Expected type name 'demo_reg', got '%s'", file.Peripheral.TypeName)
	}
	if file.Peripheral.Name() != "demo" {
		t.Errorf("Expected peripheral name 'demo', got '%s'", file.Peripheral.Name())
	}
}

func TestParseTestdataHeader(t *testing.T) {
	parser := newTestParser(t)

	filename := filepath.Join("../../testdata/headers", "dsp2_misc_reg.h")
	file, err := parser.ParseFile(filename)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}

	if got := file.Peripheral.Name(); got != "dsp2_misc" {
		t.Errorf("Expected peripheral name 'dsp2_misc', got '%s'", got)
	}

	// Two reserved entries are recognized but dropped
	if len(file.Peripheral.Entries) != 5 {
		t.Errorf("Expected 5 struct entries, got %d", len(file.Peripheral.Entries))
	}

	regs, err := file.Registers(filename)
	if err != nil {
		t.Fatalf("Failed to convert registers: %v", err)
	}

	expected := []struct {
		name   string
		offset uint32
		fields []string
	}{
		{"config", 0x0, []string{"rg_dvpas_enable", "rg_dvpas_hs_inv", "reserved_2_15", "rg_dvpas_fifo_th"}},
		{"dsp2_id", 0x100, []string{"dsp2_id"}},
		{"int_clr", 0x2FC, []string{"int_clr", "int_sts", "reserved_2_31"}},
	}

	if len(regs) != len(expected) {
		t.Fatalf("Expected %d registers, got %d", len(expected), len(regs))
	}

	for i, want := range expected {
		reg := regs[i]
		if reg.Name != want.name || reg.AddressOffset != want.offset {
			t.Errorf("Register %d: got %s@0x%X, want %s@0x%X", i, reg.Name, reg.AddressOffset, want.name, want.offset)
		}
		if len(reg.Fields) != len(want.fields) {
			t.Errorf("Register %s: expected %d fields, got %d", reg.Name, len(want.fields), len(reg.Fields))
			continue
		}
		// Header field order is file order
		for j, name := range want.fields {
			if reg.Fields[j].Name != name {
				t.Errorf("Register %s field %d: expected '%s', got '%s'", reg.Name, j, name, reg.Fields[j].Name)
			}
		}
	}

	config := regs[0]
	if config.Fields[2].Access != regmodel.Unspecified {
		t.Errorf("Expected reserved field to be Unspecified, got %v", config.Fields[2].Access)
	}
	if config.Fields[3].Bits != (regmodel.BitRange{MSB: 31, LSB: 16}) {
		t.Errorf("Expected [31:16], got %v", config.Fields[3].Bits)
	}

	intClr := regs[2]
	if intClr.Fields[0].Access != regmodel.WriteOnce {
		t.Errorf("Expected w1c to map to WriteOnce, got %v", intClr.Fields[0].Access)
	}
	if intClr.Fields[1].Access != regmodel.ReadOnly {
		t.Errorf("Expected ROC to map to ReadOnly, got %v", intClr.Fields[1].Access)
	}
}

func TestOffsetRoundTrip(t *testing.T) {
	parser := newTestParser(t)

	for _, offset := range []string{"0x0", "0x4", "0x10", "0x1fc", "0x2FC", "0xf38"} {
		t.Run(offset, func(t *testing.T) {
			src := strings.Replace(ctrlHeader, "0x10", offset, 1)
			regs, err := parser.RegistersFromString("demo_reg.h", src)
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}
			got := fmt.Sprintf("0x%x", regs[0].AddressOffset)
			if !strings.EqualFold(got, offset) {
				t.Errorf("Offset round trip: got %s, want %s", got, offset)
			}
		})
	}
}

func TestAccessModeTable(t *testing.T) {
	tests := []struct {
		token string
		want  regmodel.Access
	}{
		{"RW", regmodel.ReadWrite},
		{"rw", regmodel.ReadWrite},
		{"RWAC", regmodel.ReadWrite},
		{"RW1C", regmodel.ReadWrite},
		{"r/w", regmodel.ReadWrite},
		{"ROC", regmodel.ReadOnly},
		{"RO", regmodel.ReadOnly},
		{"r", regmodel.ReadOnly},
		{"R", regmodel.ReadOnly},
		{"w", regmodel.WriteOnly},
		{"WO", regmodel.WriteOnly},
		{"w1c", regmodel.WriteOnce},
		{"w1p", regmodel.WriteOnce},
		{"rsvd", regmodel.Unspecified},
		{"RSVD", regmodel.Unspecified},
		{"None", regmodel.Unspecified},
	}

	parser := newTestParser(t)
	for _, tc := range tests {
		t.Run(tc.token, func(t *testing.T) {
			src := strings.Replace(ctrlHeader, "RW,", tc.token+",", 1)
			regs, err := parser.RegistersFromString("demo_reg.h", src)
			if err != nil {
				t.Fatalf("Failed to parse: %v", err)
			}
			if got := regs[0].Fields[0].Access; got != tc.want {
				t.Errorf("Access(%s) = %v, want %v", tc.token, got, tc.want)
			}
		})
	}
}

func TestUnknownAccessModeFails(t *testing.T) {
	parser := newTestParser(t)

	src := strings.Replace(ctrlHeader, "RW,", "rwx,", 1)
	_, err := parser.RegistersFromString("demo_reg.h", src)
	if !errors.Is(err, regmodel.ErrUnknownAccessMode) {
		t.Fatalf("Expected ErrUnknownAccessMode, got %v", err)
	}

	// Case matters: "Rw" is not in the table
	src = strings.Replace(ctrlHeader, "RW,", "Rw,", 1)
	if _, err := parser.RegistersFromString("demo_reg.h", src); !errors.Is(err, regmodel.ErrUnknownAccessMode) {
		t.Fatalf("Expected ErrUnknownAccessMode for 'Rw', got %v", err)
	}
}

func TestMaskIsTolerated(t *testing.T) {
	parser := newTestParser(t)

	src := strings.Replace(ctrlHeader, "0x0 */", "garbage */", 1)
	file, err := parser.ParseString("demo_reg.h", src)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	field := file.Peripheral.Registers()[0].Fields[0]
	if field.MaskValue() != 0 {
		t.Errorf("Expected unparsable mask to default to 0, got 0x%X", field.MaskValue())
	}
	if _, err := file.Registers("demo_reg.h"); err != nil {
		t.Errorf("Mask failure aborted the register: %v", err)
	}
}

func TestInvertedBitsFailStrict(t *testing.T) {
	parser := newTestParser(t)

	src := strings.Replace(ctrlHeader, "[    0]", "[ 0: 3]", 1)
	_, err := parser.RegistersFromString("demo_reg.h", src)
	if !errors.Is(err, regmodel.ErrModelInvalid) {
		t.Fatalf("Expected ErrModelInvalid, got %v", err)
	}
}

func TestMalformedHeader(t *testing.T) {
	parser := newTestParser(t)

	// Field comment lost its closing bracket
	src := strings.Replace(ctrlHeader, "[    0]", "[    0", 1)
	_, err := parser.ParseString("demo_reg.h", src)
	if !errors.Is(err, regmodel.ErrMalformedHeader) {
		t.Fatalf("Expected ErrMalformedHeader, got %v", err)
	}

	var serr *regmodel.SourceError
	if !errors.As(err, &serr) {
		t.Fatalf("Expected *SourceError, got %T", err)
	}
	if serr.Rule != "field" {
		t.Errorf("Expected rule 'field', got '%s'", serr.Rule)
	}
	if serr.Line == 0 {
		t.Error("Expected a line number")
	}
}

func TestNoStructIsMalformed(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.ParseString("empty.h", "#define FOO 1\n/* nothing here */\n")
	if !errors.Is(err, regmodel.ErrMalformedHeader) {
		t.Fatalf("Expected ErrMalformedHeader, got %v", err)
	}
}

func TestMissingFileIsSourceUnavailable(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.Registers(filepath.Join(t.TempDir(), "missing_reg.h"))
	if !errors.Is(err, regmodel.ErrSourceUnavailable) {
		t.Fatalf("Expected ErrSourceUnavailable, got %v", err)
	}
}

func TestEmptyRegisterStruct(t *testing.T) {
	parser := newTestParser(t)

	src := `
struct stub_reg {
};
`
	regs, err := parser.RegistersFromString("stub_reg.h", src)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if len(regs) != 0 {
		t.Errorf("Expected no registers, got %d", len(regs))
	}
}

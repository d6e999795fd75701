package regmodel

import "fmt"

// RegisterWidth is the width in bits of every register described by the
// BL808 sources.
const RegisterWidth = 32

// BitRange is an inclusive [MSB:LSB] span within a register.
type BitRange struct {
	MSB uint32
	LSB uint32
}

// Width returns the number of bits covered by the range.
func (b BitRange) Width() uint32 {
	if b.LSB > b.MSB {
		return 0
	}
	return b.MSB - b.LSB + 1
}

// Valid reports whether MSB >= LSB.
func (b BitRange) Valid() bool {
	return b.MSB >= b.LSB
}

// Mask returns the bitmask selected by the range.
func (b BitRange) Mask() uint64 {
	w := b.Width()
	if w == 0 || w > 64 || b.LSB >= 64 {
		return 0
	}
	if w == 64 {
		return ^uint64(0)
	}
	return ((uint64(1) << w) - 1) << b.LSB
}

// Overlaps reports whether two ranges share at least one bit.
func (b BitRange) Overlaps(o BitRange) bool {
	if !b.Valid() || !o.Valid() {
		return false
	}
	return b.LSB <= o.MSB && o.LSB <= b.MSB
}

func (b BitRange) String() string {
	return fmt.Sprintf("[%d:%d]", b.MSB, b.LSB)
}

// Field is a named bit span within a register.
type Field struct {
	Name        string
	Bits        BitRange
	Access      Access
	Description string // empty when the source gave none
}

// Register is an addressable word within a peripheral. Fields keep source
// order; callers must not re-sort them.
type Register struct {
	Name          string
	AddressOffset uint32 // relative to the peripheral base
	Fields        []Field
}

// FieldOverlap names two fields of one register that share bits.
type FieldOverlap struct {
	First  Field
	Second Field
}

// Overlaps returns every pair of fields whose bit ranges intersect.
func (r *Register) Overlaps() []FieldOverlap {
	var out []FieldOverlap
	for i := 0; i < len(r.Fields); i++ {
		for j := i + 1; j < len(r.Fields); j++ {
			if r.Fields[i].Bits.Overlaps(r.Fields[j].Bits) {
				out = append(out, FieldOverlap{First: r.Fields[i], Second: r.Fields[j]})
			}
		}
	}
	return out
}

// Peripheral is a named hardware block at a base address.
type Peripheral struct {
	Name        string
	BaseAddress uint64
	Registers   []Register
}

// Dimension describes how an array peripheral repeats.
type Dimension struct {
	Dim       uint32
	Increment uint32
	Index     []string
}

// SlotKind distinguishes single peripherals from peripheral arrays.
type SlotKind int

const (
	Single SlotKind = iota
	Array
)

func (k SlotKind) String() string {
	switch k {
	case Single:
		return "single"
	case Array:
		return "array"
	default:
		return fmt.Sprintf("SlotKind(%d)", int(k))
	}
}

// PeripheralSlot is either a single peripheral instance or an array of
// identical instances.
type PeripheralSlot struct {
	kind       SlotKind
	peripheral *Peripheral
	dim        Dimension
}

// NewSingle wraps p as a single-instance slot.
func NewSingle(p *Peripheral) *PeripheralSlot {
	return &PeripheralSlot{kind: Single, peripheral: p}
}

// NewArray wraps p as an array slot repeated according to dim.
func NewArray(p *Peripheral, dim Dimension) *PeripheralSlot {
	return &PeripheralSlot{kind: Array, peripheral: p, dim: dim}
}

// Kind returns the variant held by the slot.
func (s *PeripheralSlot) Kind() SlotKind { return s.kind }

// IsArray reports whether the slot holds an array peripheral.
func (s *PeripheralSlot) IsArray() bool { return s.kind == Array }

// Peripheral returns the wrapped peripheral for either variant.
func (s *PeripheralSlot) Peripheral() *Peripheral { return s.peripheral }

// Dimension returns the array dimension. It is the zero value for singles.
func (s *PeripheralSlot) Dimension() Dimension { return s.dim }

// Device is the hand-off to the serializer.
type Device struct {
	Name            string
	Version         string
	Description     string
	AddressUnitBits uint32
	Width           uint32
	Peripherals     []*PeripheralSlot
}

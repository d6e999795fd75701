// Package assembler turns parsed register fragments into peripherals.
//
// A peripheral is created from one fragment and may be extended with
// further fragments that share its base address. One caller owns a
// peripheral until it is complete; nothing here locks.
package assembler

import (
	"fmt"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
	"github.com/OpenTraceLab/OpenTraceSVD/pkg/rstdoc"
)

// Create wraps a fragment as a new single peripheral. Validation is weak:
// a peripheral without registers is legal.
func Create(name string, base uint64, fragment []regmodel.Register) *regmodel.PeripheralSlot {
	p, _ := regmodel.NewPeripheral(name, base, fragment, regmodel.Weak)
	return regmodel.NewSingle(p)
}

// FromDocument builds a peripheral from a manual page. override, when not
// nil, replaces the inferred base address; register offsets stay relative
// to the inferred base. The result is validated strictly.
func FromDocument(name string, frag *rstdoc.Fragment, override *uint64) (*regmodel.PeripheralSlot, error) {
	if frag == nil {
		return nil, regmodel.Invalidf("peripheral %s: no fragment", name)
	}
	base := frag.BaseAddress
	if override != nil {
		base = *override
	}
	p, err := regmodel.NewPeripheral(name, base, frag.Registers, regmodel.Strict)
	if err != nil {
		return nil, err
	}
	return regmodel.NewSingle(p), nil
}

// Extend appends the registers of fragment to the peripheral in slot,
// after any registers already present.
func Extend(slot *regmodel.PeripheralSlot, fragment []regmodel.Register) error {
	if slot == nil || slot.Peripheral() == nil {
		return regmodel.Invalidf("extend: no peripheral")
	}
	if slot.IsArray() {
		return fmt.Errorf("extend %s: %w", slot.Peripheral().Name, regmodel.ErrArrayPeripheralNotSupported)
	}
	p := slot.Peripheral()
	p.Registers = append(p.Registers, fragment...)
	return nil
}

// ComputeExtent scans the registers for the highest offset.
func ComputeExtent(p *regmodel.Peripheral) regmodel.Extent {
	ext := regmodel.Extent{Name: p.Name, BaseAddress: p.BaseAddress, Highest: p.BaseAddress}
	for _, r := range p.Registers {
		if addr := p.BaseAddress + uint64(r.AddressOffset); addr > ext.Highest {
			ext.Highest = addr
		}
	}
	return ext
}

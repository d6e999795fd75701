package svd

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

const (
	schemaVersion = "1.3"
	schemaNS      = "http://www.w3.org/2001/XMLSchema-instance"
	schemaFile    = "CMSIS-SVD.xsd"
)

// Encode validates dev strictly and writes it to w as an SVD document.
func Encode(w io.Writer, dev *regmodel.Device) error {
	doc, err := FromModel(dev)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("svd: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("svd: encode %s: %w", dev.Name, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("svd: %w", err)
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// FromModel converts a device to its SVD element tree.
func FromModel(dev *regmodel.Device) (*Device, error) {
	if dev == nil {
		return nil, regmodel.Invalidf("svd: no device")
	}
	if err := dev.Validate(regmodel.Strict); err != nil {
		return nil, fmt.Errorf("svd: %w", err)
	}

	doc := &Device{
		SchemaVersion:   schemaVersion,
		XMLNS:           schemaNS,
		SchemaLoc:       schemaFile,
		Name:            dev.Name,
		Version:         dev.Version,
		Description:     dev.Description,
		AddressUnitBits: dev.AddressUnitBits,
		Width:           dev.Width,
		Size:            regmodel.RegisterWidth,
	}
	for _, slot := range dev.Peripherals {
		doc.Peripherals = append(doc.Peripherals, peripheral(slot))
	}
	return doc, nil
}

func peripheral(slot *regmodel.PeripheralSlot) *Peripheral {
	p := slot.Peripheral()
	out := &Peripheral{
		Name:        p.Name,
		BaseAddress: Hex(p.BaseAddress),
	}

	if slot.IsArray() {
		dim := slot.Dimension()
		inc := Hex(dim.Increment)
		out.Dim = dim.Dim
		out.DimIncrement = &inc
		out.DimIndex = dimIndex(dim)
		if !strings.Contains(out.Name, "%s") {
			out.Name += "%s"
		}
	}

	for i := range p.Registers {
		out.Registers = append(out.Registers, register(&p.Registers[i]))
	}
	return out
}

func register(r *regmodel.Register) *Register {
	out := &Register{
		Name:          r.Name,
		AddressOffset: Hex(r.AddressOffset),
		Size:          regmodel.RegisterWidth,
	}
	for _, f := range r.Fields {
		out.Fields = append(out.Fields, &Field{
			Name:        f.Name,
			Description: f.Description,
			BitRange:    f.Bits.String(),
			Access:      f.Access.String(),
		})
	}
	return out
}

// dimIndex lists explicit indices, or 0..dim-1 when none are given.
func dimIndex(dim regmodel.Dimension) string {
	if len(dim.Index) > 0 {
		return strings.Join(dim.Index, ",")
	}
	idx := make([]string, dim.Dim)
	for i := range idx {
		idx[i] = strconv.Itoa(i)
	}
	return strings.Join(idx, ",")
}

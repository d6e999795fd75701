// Package svd writes register models as CMSIS-SVD 1.3 documents.
package svd

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

// Hex is a number written as 0x-prefixed hex. It reads any Go integer
// literal.
type Hex uint64

func (h Hex) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%08X", uint64(h))), nil
}

func (h *Hex) UnmarshalText(b []byte) error {
	v, err := strconv.ParseUint(string(b), 0, 64)
	if err != nil {
		return err
	}
	*h = Hex(v)
	return nil
}

// Device is the document root.
type Device struct {
	XMLName       xml.Name `xml:"device"`
	SchemaVersion string   `xml:"schemaVersion,attr"`
	XMLNS         string   `xml:"xmlns:xs,attr"`
	SchemaLoc     string   `xml:"xs:noNamespaceSchemaLocation,attr"`

	Name            string        `xml:"name"`
	Version         string        `xml:"version"`
	Description     string        `xml:"description"`
	AddressUnitBits uint32        `xml:"addressUnitBits"`
	Width           uint32        `xml:"width"`
	Size            uint32        `xml:"size"`
	Peripherals     []*Peripheral `xml:"peripherals>peripheral"`
}

// Peripheral is one peripheral element. The dim group is set for arrays.
type Peripheral struct {
	Dim          uint32      `xml:"dim,omitempty"`
	DimIncrement *Hex        `xml:"dimIncrement,omitempty"`
	DimIndex     string      `xml:"dimIndex,omitempty"`
	Name         string      `xml:"name"`
	BaseAddress  Hex         `xml:"baseAddress"`
	Registers    []*Register `xml:"registers>register,omitempty"`
}

type Register struct {
	Name          string   `xml:"name"`
	AddressOffset Hex      `xml:"addressOffset"`
	Size          uint32   `xml:"size"`
	Fields        []*Field `xml:"fields>field,omitempty"`
}

type Field struct {
	Name        string `xml:"name"`
	Description string `xml:"description,omitempty"`
	BitRange    string `xml:"bitRange"`
	Access      string `xml:"access,omitempty"`
}

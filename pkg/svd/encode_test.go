package svd

import (
	"bytes"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

func testDevice() *regmodel.Device {
	uart := &regmodel.Peripheral{
		Name:        "UART0",
		BaseAddress: 0x2000A000,
		Registers: []regmodel.Register{
			{
				Name:          "utx_config",
				AddressOffset: 0x0,
				Fields: []regmodel.Field{
					{Name: "cr_utx_en", Bits: regmodel.BitRange{MSB: 0, LSB: 0}, Access: regmodel.ReadWrite, Description: "Enable"},
					{Name: "RSVD", Bits: regmodel.BitRange{MSB: 15, LSB: 8}},
				},
			},
			{Name: "urx_config", AddressOffset: 0x4},
		},
	}
	dvp := &regmodel.Peripheral{
		Name:        "DVP",
		BaseAddress: 0x30012000,
		Registers:   []regmodel.Register{{Name: "cfg", AddressOffset: 0x0}},
	}

	return &regmodel.Device{
		Name:            "BL808",
		Version:         "0.1",
		Description:     "Bouffalo Labs BL808",
		AddressUnitBits: 8,
		Width:           32,
		Peripherals: []*regmodel.PeripheralSlot{
			regmodel.NewSingle(uart),
			regmodel.NewArray(dvp, regmodel.Dimension{Dim: 8, Increment: 0x100}),
		},
	}
}

func TestEncodeDevice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testDevice()))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `schemaVersion="1.3"`)
	assert.Contains(t, out, "<name>BL808</name>")
	assert.Contains(t, out, "<addressUnitBits>8</addressUnitBits>")
	assert.Contains(t, out, "<baseAddress>0x2000A000</baseAddress>")
	assert.Contains(t, out, "<addressOffset>0x00000004</addressOffset>")
	assert.Contains(t, out, "<bitRange>[15:8]</bitRange>")
	assert.Contains(t, out, "<access>read-write</access>")
	assert.Contains(t, out, "<description>Enable</description>")
}

func TestEncodeRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testDevice()))

	var doc Device
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))

	require.Len(t, doc.Peripherals, 2)
	uart := doc.Peripherals[0]
	assert.Equal(t, "UART0", uart.Name)
	assert.Equal(t, Hex(0x2000A000), uart.BaseAddress)
	require.Len(t, uart.Registers, 2)
	assert.Equal(t, uint32(32), uart.Registers[0].Size)

	fields := uart.Registers[0].Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "cr_utx_en", fields[0].Name)
	// Reserved field: no access, no description
	assert.Empty(t, fields[1].Access)
	assert.Empty(t, fields[1].Description)

	assert.Empty(t, uart.Registers[1].Fields)
}

func TestEncodeArrayPeripheral(t *testing.T) {
	doc, err := FromModel(testDevice())
	require.NoError(t, err)

	dvp := doc.Peripherals[1]
	assert.Equal(t, "DVP%s", dvp.Name)
	assert.Equal(t, uint32(8), dvp.Dim)
	require.NotNil(t, dvp.DimIncrement)
	assert.Equal(t, Hex(0x100), *dvp.DimIncrement)
	assert.Equal(t, "0,1,2,3,4,5,6,7", dvp.DimIndex)

	single := doc.Peripherals[0]
	assert.Zero(t, single.Dim)
	assert.Nil(t, single.DimIncrement)
}

func TestEncodeExplicitDimIndex(t *testing.T) {
	dev := testDevice()
	p := &regmodel.Peripheral{Name: "I2C", BaseAddress: 0x2000A300}
	dev.Peripherals = append(dev.Peripherals,
		regmodel.NewArray(p, regmodel.Dimension{Dim: 2, Increment: 0x100, Index: []string{"A", "B"}}))

	doc, err := FromModel(dev)
	require.NoError(t, err)
	assert.Equal(t, "A,B", doc.Peripherals[2].DimIndex)
}

func TestEncodeRejectsInvalidDevice(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*regmodel.Device)
	}{
		{"missing name", func(d *regmodel.Device) { d.Name = "" }},
		{"zero width", func(d *regmodel.Device) { d.Width = 0 }},
		{"duplicate peripheral", func(d *regmodel.Device) {
			d.Peripherals = append(d.Peripherals, d.Peripherals[0])
		}},
		{"field beyond register", func(d *regmodel.Device) {
			p := d.Peripherals[0].Peripheral()
			p.Registers[0].Fields[0].Bits = regmodel.BitRange{MSB: 32, LSB: 0}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := testDevice()
			tt.mutate(dev)

			var buf bytes.Buffer
			err := Encode(&buf, dev)
			require.Error(t, err)
			assert.True(t, errors.Is(err, regmodel.ErrModelInvalid), "got %v", err)
			assert.Zero(t, buf.Len(), "nothing may be written for an invalid device")
		})
	}
}

func TestHexText(t *testing.T) {
	b, err := Hex(0x30010000).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "0x30010000", string(b))

	var h Hex
	require.NoError(t, h.UnmarshalText([]byte("0x2FC")))
	assert.Equal(t, Hex(0x2FC), h)
	require.NoError(t, h.UnmarshalText([]byte("64")))
	assert.Equal(t, Hex(64), h)
	assert.Error(t, h.UnmarshalText([]byte("zz")))
}

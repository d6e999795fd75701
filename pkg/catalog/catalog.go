// Package catalog describes which source file backs each peripheral of a
// device, at which base address, and how the device is labelled.
package catalog

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTraceSVD/pkg/regmodel"
)

//go:embed bl808.yaml
var builtinFS embed.FS

// Kind selects the parser for an entry.
type Kind string

const (
	Header Kind = "header"
	Doc    Kind = "doc"
)

// Address is a base address. It is written as hex and read from any Go
// integer literal.
type Address uint64

func (a *Address) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(node.Value, 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: address %q: %w", node.Line, node.Value, err)
	}
	*a = Address(v)
	return nil
}

func (a Address) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("0x%08X", uint64(a))}, nil
}

// Catalog is the full description of one device.
type Catalog struct {
	Device      Device  `yaml:"device"`
	Sources     Sources `yaml:"sources"`
	Peripherals []Entry `yaml:"peripherals"`
}

// Device holds the metadata written to the SVD root.
type Device struct {
	Name            string `yaml:"name"`
	Version         string `yaml:"version"`
	Description     string `yaml:"description"`
	AddressUnitBits uint32 `yaml:"addressUnitBits"`
	Width           uint32 `yaml:"width"`
}

// Sources lists where source files live, relative to the project root.
type Sources struct {
	// HeaderFolders are searched in order; the first hit wins.
	HeaderFolders []string `yaml:"headerFolders"`
	// DocTrees maps a manual language to its directory.
	DocTrees    map[string]string `yaml:"docTrees"`
	DefaultLang string            `yaml:"defaultLang"`
}

// Entry is one peripheral of the device.
type Entry struct {
	Name string `yaml:"name"`
	Kind Kind   `yaml:"kind"`
	File string `yaml:"file"`
	// Lang picks a manual tree for doc entries; empty means DefaultLang.
	Lang string `yaml:"lang,omitempty"`
	// Base is required for headers and overrides the inferred base for docs.
	Base *Address `yaml:"base,omitempty"`
	// Extends lists further headers appended to this peripheral in order.
	Extends []string `yaml:"extends,omitempty"`
	Array   *Array   `yaml:"array,omitempty"`
}

// Array repeats a peripheral at a fixed stride.
type Array struct {
	Dim       uint32   `yaml:"dim"`
	Increment Address  `yaml:"increment"`
	Index     []string `yaml:"index,omitempty"`
}

// Dimension converts the array description for the model.
func (a *Array) Dimension() regmodel.Dimension {
	return regmodel.Dimension{Dim: a.Dim, Increment: uint32(a.Increment), Index: a.Index}
}

// Language returns the manual language used for e.
func (c *Catalog) Language(e *Entry) string {
	if e.Lang != "" {
		return e.Lang
	}
	return c.Sources.DefaultLang
}

// Lookup finds an entry by peripheral name.
func (c *Catalog) Lookup(name string) (*Entry, bool) {
	for i := range c.Peripherals {
		if c.Peripherals[i].Name == name {
			return &c.Peripherals[i], true
		}
	}
	return nil, false
}

// Model returns the device metadata without peripherals.
func (d Device) Model() *regmodel.Device {
	return &regmodel.Device{
		Name:            d.Name,
		Version:         d.Version,
		Description:     d.Description,
		AddressUnitBits: d.AddressUnitBits,
		Width:           d.Width,
	}
}

// Parse decodes and validates a catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: parsing: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads and parses the catalog at path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: reading %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Builtin returns the BL808 catalog shipped with the binary.
func Builtin() (*Catalog, error) {
	data, err := builtinFS.ReadFile("bl808.yaml")
	if err != nil {
		return nil, fmt.Errorf("catalog: builtin: %w", err)
	}
	return Parse(data)
}

// Write encodes the catalog as YAML.
func (c *Catalog) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("catalog: encoding: %w", err)
	}
	return enc.Close()
}

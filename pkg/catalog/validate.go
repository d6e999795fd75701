package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid is wrapped by every catalog validation failure.
var ErrInvalid = errors.New("invalid catalog")

// EntryError reports a defect in one catalog entry.
type EntryError struct {
	Index int
	Name  string
	Msg   string
}

func (e *EntryError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("peripherals[%d]: %s", e.Index, e.Msg)
	}
	return fmt.Sprintf("peripherals[%d] %s: %s", e.Index, e.Name, e.Msg)
}

func (e *EntryError) Unwrap() error {
	return ErrInvalid
}

// Validate checks the catalog for structural defects. Every problem is
// reported, joined into one error.
func (c *Catalog) Validate() error {
	var errs []error
	if c.Device.Name == "" {
		errs = append(errs, fmt.Errorf("%w: device name is empty", ErrInvalid))
	}
	if c.Device.Width == 0 || c.Device.AddressUnitBits == 0 {
		errs = append(errs, fmt.Errorf("%w: device width and addressUnitBits must be set", ErrInvalid))
	}

	seen := make(map[string]int, len(c.Peripherals))
	for i := range c.Peripherals {
		e := &c.Peripherals[i]
		fail := func(format string, args ...any) {
			errs = append(errs, &EntryError{Index: i, Name: e.Name, Msg: fmt.Sprintf(format, args...)})
		}

		if e.Name == "" {
			fail("missing name")
		} else if prev, ok := seen[e.Name]; ok {
			fail("duplicate of peripherals[%d]", prev)
		} else {
			seen[e.Name] = i
		}
		if strings.TrimSpace(e.File) == "" {
			fail("missing file")
		}

		switch e.Kind {
		case Header:
			if e.Base == nil {
				fail("header entry needs a base address")
			}
			if e.Lang != "" {
				fail("lang applies to doc entries only")
			}
		case Doc:
			if len(e.Extends) > 0 {
				fail("extends applies to header entries only")
			}
			if _, ok := c.Sources.DocTrees[c.Language(e)]; !ok {
				fail("no doc tree for language %q", c.Language(e))
			}
		default:
			fail("unknown kind %q", e.Kind)
		}

		if e.Array != nil {
			if e.Array.Dim == 0 {
				fail("array dim must be positive")
			}
			if len(e.Array.Index) > 0 && uint32(len(e.Array.Index)) != e.Array.Dim {
				fail("array index has %d names for dim %d", len(e.Array.Index), e.Array.Dim)
			}
			if len(e.Extends) > 0 {
				fail("array peripherals cannot be extended")
			}
		}
	}

	return errors.Join(errs...)
}

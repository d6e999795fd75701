package regmodel

import "fmt"

// Extent is the observed address span of one peripheral, for reporting.
type Extent struct {
	Name        string
	BaseAddress uint64
	Highest     uint64 // base + highest register offset
}

// End returns the first address past the highest register.
func (e Extent) End() uint64 {
	return e.Highest + RegisterWidth/8
}

func (e Extent) String() string {
	return fmt.Sprintf("%s [0x%08X, 0x%08X]", e.Name, e.BaseAddress, e.Highest)
}

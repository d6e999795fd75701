package regmodel

// ValidateLevel selects how much structural checking construction performs.
type ValidateLevel int

const (
	// Weak accepts incomplete or inconsistent data as-is.
	Weak ValidateLevel = iota
	// Strict rejects structurally invalid entities with ErrModelInvalid.
	Strict
)

func (l ValidateLevel) String() string {
	if l == Strict {
		return "strict"
	}
	return "weak"
}

// NewField builds a field and validates it at the given level.
func NewField(name string, bits BitRange, access Access, description string, level ValidateLevel) (Field, error) {
	f := Field{Name: name, Bits: bits, Access: access, Description: description}
	if err := f.Validate(level); err != nil {
		return Field{}, err
	}
	return f, nil
}

// Validate checks the field. Weak never fails.
func (f *Field) Validate(level ValidateLevel) error {
	if level == Weak {
		return nil
	}
	if f.Name == "" {
		return Invalidf("field without name")
	}
	if !f.Bits.Valid() {
		return Invalidf("field %s: lsb %d above msb %d", f.Name, f.Bits.LSB, f.Bits.MSB)
	}
	if f.Bits.MSB >= RegisterWidth {
		return Invalidf("field %s: msb %d outside %d-bit register", f.Name, f.Bits.MSB, RegisterWidth)
	}
	return nil
}

// NewRegister builds a register and validates it at the given level.
func NewRegister(name string, offset uint32, fields []Field, level ValidateLevel) (Register, error) {
	r := Register{Name: name, AddressOffset: offset, Fields: fields}
	if err := r.Validate(level); err != nil {
		return Register{}, err
	}
	return r, nil
}

// Validate checks the register and its fields. Weak never fails. Field
// overlaps are not rejected here; use Overlaps to detect them.
func (r *Register) Validate(level ValidateLevel) error {
	if level == Weak {
		return nil
	}
	if r.Name == "" {
		return Invalidf("register at offset 0x%X without name", r.AddressOffset)
	}
	for i := range r.Fields {
		if err := r.Fields[i].Validate(level); err != nil {
			return Invalidf("register %s: %v", r.Name, unwrapInvalid(err))
		}
	}
	return nil
}

// NewPeripheral builds a peripheral and validates it at the given level.
func NewPeripheral(name string, base uint64, registers []Register, level ValidateLevel) (*Peripheral, error) {
	p := &Peripheral{Name: name, BaseAddress: base, Registers: registers}
	if err := p.Validate(level); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks the peripheral and everything it owns. Weak never fails.
func (p *Peripheral) Validate(level ValidateLevel) error {
	if level == Weak {
		return nil
	}
	if p.Name == "" {
		return Invalidf("peripheral at 0x%X without name", p.BaseAddress)
	}
	for i := range p.Registers {
		if err := p.Registers[i].Validate(level); err != nil {
			return Invalidf("peripheral %s: %v", p.Name, unwrapInvalid(err))
		}
	}
	return nil
}

// Validate checks device metadata and validates every peripheral.
func (d *Device) Validate(level ValidateLevel) error {
	if level == Weak {
		return nil
	}
	if d.Name == "" {
		return Invalidf("device without name")
	}
	if d.Width == 0 || d.AddressUnitBits == 0 {
		return Invalidf("device %s: width and addressUnitBits must be set", d.Name)
	}
	names := make(map[string]bool, len(d.Peripherals))
	for _, slot := range d.Peripherals {
		if slot == nil || slot.Peripheral() == nil {
			return Invalidf("device %s: empty peripheral slot", d.Name)
		}
		p := slot.Peripheral()
		if err := p.Validate(level); err != nil {
			return err
		}
		if names[p.Name] {
			return Invalidf("device %s: duplicate peripheral %s", d.Name, p.Name)
		}
		names[p.Name] = true
	}
	return nil
}

// unwrapInvalid strips the sentinel prefix so nested messages read once.
func unwrapInvalid(err error) string {
	msg := err.Error()
	prefix := ErrModelInvalid.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

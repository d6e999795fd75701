package regmodel

import "fmt"

// Access is the read/write capability of a field.
type Access int

const (
	// Unspecified marks reserved fields or fields without an access token.
	Unspecified Access = iota
	ReadOnly
	WriteOnly
	ReadWrite
	WriteOnce
)

// String returns the SVD spelling of the access mode. Unspecified has none.
func (a Access) String() string {
	switch a {
	case Unspecified:
		return ""
	case ReadOnly:
		return "read-only"
	case WriteOnly:
		return "write-only"
	case ReadWrite:
		return "read-write"
	case WriteOnce:
		return "writeOnce"
	default:
		return fmt.Sprintf("Access(%d)", int(a))
	}
}

// Specified reports whether the access mode carries information.
func (a Access) Specified() bool {
	return a != Unspecified
}

// AccessTable maps literal source tokens to access modes. Lookups are
// case-sensitive; a miss is an error, never a guess.
type AccessTable map[string]Access

// Lookup resolves token or returns an error wrapping ErrUnknownAccessMode.
func (t AccessTable) Lookup(token string) (Access, error) {
	if a, ok := t[token]; ok {
		return a, nil
	}
	return Unspecified, fmt.Errorf("%w: %q", ErrUnknownAccessMode, token)
}

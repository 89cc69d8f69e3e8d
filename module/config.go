package module

// FragmentPosition tags where a configuration fragment sits in the logical
// blob it belongs to.
type FragmentPosition int

const (
	// FragmentFirst is the opening fragment of a multi-fragment transfer.
	FragmentFirst FragmentPosition = iota
	// FragmentMiddle is an inner fragment.
	FragmentMiddle
	// FragmentLast closes a multi-fragment transfer.
	FragmentLast
	// FragmentSingle is a transfer that fits in one fragment.
	FragmentSingle
)

func (p FragmentPosition) String() string {
	switch p {
	case FragmentFirst:
		return "first"
	case FragmentMiddle:
		return "middle"
	case FragmentLast:
		return "last"
	case FragmentSingle:
		return "single"
	}
	return "unknown"
}

// Configurable is an optional capability: the module accepts and emits its
// configuration blob in bounded-size fragments. A module without it yields a
// non-fatal no-op on configuration commands.
type Configurable interface {
	// SetConfiguration applies one fragment of a configuration blob. id is
	// the module-specific blob type, offset the byte position of the
	// fragment within the whole blob.
	SetConfiguration(id uint32, pos FragmentPosition, offset uint32, fragment []byte) error
	// GetConfiguration fills buf with one fragment. On the first fragment
	// the module stores the total blob size in *size.
	GetConfiguration(pos FragmentPosition, size *uint32, buf []byte) (int, error)
}

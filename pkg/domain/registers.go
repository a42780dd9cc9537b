package domain

// Registers is the opaque mutable scratchpad carried alongside the state.
// The engine never inspects its contents; it only clones it wholesale when
// taking snapshots and when forking speculative branches.
//
// Clone must return a copy deep enough that mutations through one value
// are never observable through the other. An aliasing Clone breaks the
// isolation between speculative branches.
type Registers interface {
	Clone() Registers
}

// MapRegisters is a ready-made Registers implementation over a string map.
// Clone deep-copies nested maps and slices, which covers the common case
// of JSON/YAML-shaped bookkeeping data.
type MapRegisters map[string]any

// NewMapRegisters returns an empty, non-nil register bag.
func NewMapRegisters() MapRegisters {
	return make(MapRegisters)
}

// Clone implements Registers.
func (m MapRegisters) Clone() Registers {
	if m == nil {
		return MapRegisters(nil)
	}
	out := make(MapRegisters, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = deepCopyValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = deepCopyValue(inner)
		}
		return out
	default:
		// Scalars (and anything else) are copied by value. Pointer-shaped
		// custom types should use their own Registers implementation.
		return v
	}
}

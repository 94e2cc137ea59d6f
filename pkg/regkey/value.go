package regkey

import "github.com/joshuapare/regkeys/pkg/types"

// GetValue reads the named value and converts it to T. Any failure (missing
// value, different type, backend error, torn-down node) yields def.
func GetValue[T any](n *Node, name string, def T) T {
	if n == nil {
		return def
	}
	v, err := n.Value(name)
	if err != nil {
		return def
	}
	out, ok := types.As[T](v)
	if !ok {
		return def
	}
	return out
}

// StringValue returns a REG_SZ/REG_EXPAND_SZ/REG_LINK value, or "".
func (n *Node) StringValue(name string) string {
	return GetValue(n, name, "")
}

// ByteValue returns a raw-typed value (REG_BINARY, REG_NONE, ...), or an
// empty slice.
func (n *Node) ByteValue(name string) []byte {
	return GetValue(n, name, []byte{})
}

// StringsValue returns a REG_MULTI_SZ value, or nil.
func (n *Node) StringsValue(name string) []string {
	return GetValue[[]string](n, name, nil)
}

// Uint32Value returns a REG_DWORD value, or def.
func (n *Node) Uint32Value(name string, def uint32) uint32 {
	return GetValue(n, name, def)
}

// Uint64Value returns a REG_QWORD value, or def.
func (n *Node) Uint64Value(name string, def uint64) uint64 {
	return GetValue(n, name, def)
}

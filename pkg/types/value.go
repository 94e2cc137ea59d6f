package types

import (
	"encoding/hex"
	"fmt"
	"math"
	"strings"
)

// Value is a typed registry payload. The RegType is the tag; exactly one of
// the payload fields is meaningful for a given tag:
//
//	REG_SZ, REG_EXPAND_SZ, REG_LINK  -> str
//	REG_MULTI_SZ                     -> strs
//	REG_DWORD, REG_DWORD_BE          -> num (low 32 bits)
//	REG_QWORD                        -> num
//	anything else                    -> raw
//
// Accessors never perform unchecked conversions: a mismatch reports ok=false.
type Value struct {
	Type RegType

	str  string
	strs []string
	num  uint64
	raw  []byte
}

// StringValue returns a REG_SZ value.
func StringValue(s string) Value { return Value{Type: REG_SZ, str: s} }

// ExpandStringValue returns a REG_EXPAND_SZ value.
func ExpandStringValue(s string) Value { return Value{Type: REG_EXPAND_SZ, str: s} }

// LinkValue returns a REG_LINK value.
func LinkValue(s string) Value { return Value{Type: REG_LINK, str: s} }

// MultiStringValue returns a REG_MULTI_SZ value.
func MultiStringValue(ss []string) Value {
	return Value{Type: REG_MULTI_SZ, strs: append([]string(nil), ss...)}
}

// DWORDValue returns a REG_DWORD value.
func DWORDValue(v uint32) Value { return Value{Type: REG_DWORD, num: uint64(v)} }

// DWORDBigEndianValue returns a REG_DWORD_BE value (already decoded to host order).
func DWORDBigEndianValue(v uint32) Value { return Value{Type: REG_DWORD_BE, num: uint64(v)} }

// QWORDValue returns a REG_QWORD value.
func QWORDValue(v uint64) Value { return Value{Type: REG_QWORD, num: v} }

// BinaryValue returns a REG_BINARY value.
func BinaryValue(b []byte) Value { return RawValue(REG_BINARY, b) }

// RawValue returns a value of type t carrying undecoded bytes. Used for
// REG_NONE, REG_BINARY, resource lists and unknown types.
func RawValue(t RegType, b []byte) Value {
	return Value{Type: t, raw: append([]byte{}, b...)}
}

// IsString reports whether the tag carries a single string.
func (v Value) IsString() bool {
	return v.Type == REG_SZ || v.Type == REG_EXPAND_SZ || v.Type == REG_LINK
}

// IsRaw reports whether the tag carries undecoded bytes.
func (v Value) IsRaw() bool {
	switch v.Type {
	case REG_SZ, REG_EXPAND_SZ, REG_LINK, REG_MULTI_SZ, REG_DWORD, REG_DWORD_BE, REG_QWORD:
		return false
	}
	return true
}

// AsString returns the payload of a string-typed value.
func (v Value) AsString() (string, bool) {
	if !v.IsString() {
		return "", false
	}
	return v.str, true
}

// AsStrings returns the payload of a REG_MULTI_SZ value.
func (v Value) AsStrings() ([]string, bool) {
	if v.Type != REG_MULTI_SZ {
		return nil, false
	}
	return append([]string(nil), v.strs...), true
}

// AsUint32 returns the payload of a REG_DWORD or REG_DWORD_BE value.
func (v Value) AsUint32() (uint32, bool) {
	if v.Type != REG_DWORD && v.Type != REG_DWORD_BE {
		return 0, false
	}
	return uint32(v.num), true
}

// AsUint64 returns the payload of a REG_QWORD value.
func (v Value) AsUint64() (uint64, bool) {
	if v.Type != REG_QWORD {
		return 0, false
	}
	return v.num, true
}

// AsBytes returns the payload of a raw-typed value (REG_BINARY, REG_NONE, ...).
// The returned slice is a copy.
func (v Value) AsBytes() ([]byte, bool) {
	if !v.IsRaw() {
		return nil, false
	}
	return append([]byte{}, v.raw...), true
}

// AsInteger returns the payload of a REG_DWORD, REG_DWORD_BE or REG_QWORD
// value widened to uint64.
func (v Value) AsInteger() (uint64, bool) {
	switch v.Type {
	case REG_DWORD, REG_DWORD_BE, REG_QWORD:
		return v.num, true
	default:
		return 0, false
	}
}

// As converts v to T when the tag allows it. Supported targets are string,
// []string, uint32, uint64, []byte, Value itself, and int, int32, int64 and
// uint for numeric values. Integer targets fail when the stored number does
// not fit.
func As[T any](v Value) (T, bool) {
	var out T
	var ok bool
	switch p := any(&out).(type) {
	case *string:
		*p, ok = v.AsString()
	case *[]string:
		*p, ok = v.AsStrings()
	case *uint32:
		*p, ok = v.AsUint32()
	case *uint64:
		*p, ok = v.AsUint64()
	case *[]byte:
		*p, ok = v.AsBytes()
	case *int:
		*p, ok = asInt[int](v, math.MaxInt)
	case *int32:
		*p, ok = asInt[int32](v, math.MaxInt32)
	case *int64:
		*p, ok = asInt[int64](v, math.MaxInt64)
	case *uint:
		*p, ok = asInt[uint](v, math.MaxUint)
	case *Value:
		*p, ok = v, true
	}
	return out, ok
}

func asInt[T int | int32 | int64 | uint](v Value, limit uint64) (T, bool) {
	n, ok := v.AsInteger()
	if !ok || n > limit {
		return 0, false
	}
	return T(n), true
}

// Format renders the payload for display. Raw values are hex encoded.
func (v Value) Format() string {
	switch {
	case v.IsString():
		return v.str
	case v.Type == REG_MULTI_SZ:
		return strings.Join(v.strs, `\0`)
	case v.Type == REG_DWORD, v.Type == REG_DWORD_BE:
		return fmt.Sprintf("0x%08x (%d)", uint32(v.num), uint32(v.num))
	case v.Type == REG_QWORD:
		return fmt.Sprintf("0x%016x (%d)", v.num, v.num)
	default:
		return hex.EncodeToString(v.raw)
	}
}

// Equal reports whether two values carry the same tag and payload.
func (v Value) Equal(o Value) bool {
	if v.Type != o.Type {
		return false
	}
	switch {
	case v.IsString():
		return v.str == o.str
	case v.Type == REG_MULTI_SZ:
		if len(v.strs) != len(o.strs) {
			return false
		}
		for i := range v.strs {
			if v.strs[i] != o.strs[i] {
				return false
			}
		}
		return true
	case v.IsRaw():
		return string(v.raw) == string(o.raw)
	default:
		return v.num == o.num
	}
}

package format

import "strings"

// DecodeMultiString decodes REG_MULTI_SZ data: NUL-separated UTF-16LE
// strings ending in an empty string. Trailing empty entries are dropped.
func DecodeMultiString(b []byte) ([]string, error) {
	if len(b)%2 == 1 {
		b = b[:len(b)-1]
	}
	out, err := utf16le.NewDecoder().Bytes(b)
	if err != nil {
		return nil, err
	}
	parts := strings.Split(string(out), "\x00")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	if len(parts) == 0 {
		return []string{}, nil
	}
	return parts, nil
}

// EncodeString encodes s as NUL-terminated UTF-16LE (REG_SZ layout).
func EncodeString(s string) ([]byte, error) {
	b, err := EncodeUTF16(s)
	if err != nil {
		return nil, err
	}
	return append(b, 0, 0), nil
}

// EncodeMultiString encodes ss in REG_MULTI_SZ layout.
func EncodeMultiString(ss []string) ([]byte, error) {
	var out []byte
	for _, s := range ss {
		b, err := EncodeString(s)
		if err != nil {
			return nil, err
		}
		out = append(out, b...)
	}
	return append(out, 0, 0), nil
}

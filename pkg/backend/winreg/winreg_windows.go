//go:build windows

package winreg

import (
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"

	"github.com/joshuapare/regkeys/internal/format"
	"github.com/joshuapare/regkeys/pkg/types"
)

const access = registry.QUERY_VALUE | registry.ENUMERATE_SUB_KEYS

var roots = map[string]registry.Key{
	"HKEY_LOCAL_MACHINE":  registry.LOCAL_MACHINE,
	"HKEY_CURRENT_USER":   registry.CURRENT_USER,
	"HKEY_CLASSES_ROOT":   registry.CLASSES_ROOT,
	"HKEY_USERS":          registry.USERS,
	"HKEY_CURRENT_CONFIG": registry.CURRENT_CONFIG,
}

// OpenRoot implements types.Backend.
func (*Backend) OpenRoot(identifier string) (types.Handle, error) {
	hive, path, ok := splitIdentifier(identifier)
	if !ok {
		return nil, types.NotFound(fmt.Sprintf("unknown registry hive in %q", identifier))
	}
	name := hive
	if path != "" {
		name += Separator + path
	}
	k, err := registry.OpenKey(roots[hive], path, access)
	if err != nil {
		return nil, mapErr(name, err)
	}
	return &handle{key: k, name: name}, nil
}

func mapErr(name string, err error) error {
	if errors.Is(err, registry.ErrNotExist) {
		return types.NotFound(fmt.Sprintf("key %s not found", name))
	}
	return err
}

type handle struct {
	key    registry.Key
	name   string
	closed bool
}

func (h *handle) FullName() string { return h.name }

func (h *handle) SubkeyCount() (int, error) {
	info, err := h.key.Stat()
	if err != nil {
		return 0, err
	}
	return int(info.SubKeyCount), nil
}

func (h *handle) SubkeyNames() ([]string, error) {
	return h.key.ReadSubKeyNames(-1)
}

func (h *handle) OpenChild(name string) (types.Handle, error) {
	full := h.name + Separator + name
	k, err := registry.OpenKey(h.key, name, access)
	if err != nil {
		return nil, mapErr(full, err)
	}
	return &handle{key: k, name: full}, nil
}

func (h *handle) ValueNames() ([]string, error) {
	return h.key.ReadValueNames(-1)
}

func (h *handle) ReadValue(name string) (types.Value, error) {
	size, typ, err := h.key.GetValue(name, nil)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return types.Value{}, types.ErrMissingValue
		}
		return types.Value{}, err
	}
	switch typ {
	case registry.SZ, registry.EXPAND_SZ:
		s, _, err := h.key.GetStringValue(name)
		if err != nil {
			return types.Value{}, err
		}
		if typ == registry.EXPAND_SZ {
			return types.ExpandStringValue(s), nil
		}
		return types.StringValue(s), nil
	case registry.MULTI_SZ:
		ss, _, err := h.key.GetStringsValue(name)
		if err != nil {
			return types.Value{}, err
		}
		return types.MultiStringValue(ss), nil
	case registry.DWORD:
		v, _, err := h.key.GetIntegerValue(name)
		if err != nil {
			return types.Value{}, err
		}
		return types.DWORDValue(uint32(v)), nil
	case registry.QWORD:
		v, _, err := h.key.GetIntegerValue(name)
		if err != nil {
			return types.Value{}, err
		}
		return types.QWORDValue(v), nil
	default:
		buf := make([]byte, size)
		n, _, err := h.key.GetValue(name, buf)
		if err != nil {
			return types.Value{}, err
		}
		buf = buf[:n]
		switch {
		case typ == registry.DWORD_BIG_ENDIAN && n >= 4:
			return types.DWORDBigEndianValue(binary.BigEndian.Uint32(buf)), nil
		case typ == registry.LINK:
			s, err := format.DecodeUTF16(buf)
			if err != nil {
				return types.Value{}, err
			}
			return types.LinkValue(s), nil
		}
		return types.RawValue(types.RegType(typ), buf), nil
	}
}

func (h *handle) Close() error {
	if h.closed {
		return types.ErrAlreadyClosed
	}
	h.closed = true
	return h.key.Close()
}

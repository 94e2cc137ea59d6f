package types

import (
	"fmt"
	"strconv"
	"strings"
)

// RegType enumerates Windows registry value types commonly encountered.
// (The numbers align with Windows definitions.)
type RegType uint32

const (
	REG_NONE                       RegType = 0
	REG_SZ                         RegType = 1
	REG_EXPAND_SZ                  RegType = 2
	REG_BINARY                     RegType = 3
	REG_DWORD                      RegType = 4
	REG_DWORD_LE                   RegType = 4 // alias for clarity
	REG_DWORD_BE                   RegType = 5
	REG_LINK                       RegType = 6
	REG_MULTI_SZ                   RegType = 7
	REG_RESOURCE_LIST              RegType = 8
	REG_FULL_RESOURCE_DESCRIPTOR   RegType = 9
	REG_RESOURCE_REQUIREMENTS_LIST RegType = 10
	REG_QWORD                      RegType = 11
)

var regTypeNames = map[RegType]string{
	REG_NONE:                       "REG_NONE",
	REG_SZ:                         "REG_SZ",
	REG_EXPAND_SZ:                  "REG_EXPAND_SZ",
	REG_BINARY:                     "REG_BINARY",
	REG_DWORD:                      "REG_DWORD",
	REG_DWORD_BE:                   "REG_DWORD_BE",
	REG_LINK:                       "REG_LINK",
	REG_MULTI_SZ:                   "REG_MULTI_SZ",
	REG_RESOURCE_LIST:              "REG_RESOURCE_LIST",
	REG_FULL_RESOURCE_DESCRIPTOR:   "REG_FULL_RESOURCE_DESCRIPTOR",
	REG_RESOURCE_REQUIREMENTS_LIST: "REG_RESOURCE_REQUIREMENTS_LIST",
	REG_QWORD:                      "REG_QWORD",
}

// String implements the Stringer interface for RegType.
func (t RegType) String() string {
	if name, ok := regTypeNames[t]; ok {
		return name
	}
	// Signed, to match hivex (negative values for invalid types)
	return fmt.Sprintf("UNKNOWN_TYPE_%d", int32(t))
}

// ParseRegType is the inverse of RegType.String. It also accepts the
// UNKNOWN_TYPE_<n> form and bare decimal numbers.
func ParseRegType(s string) (RegType, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	for t, name := range regTypeNames {
		if name == s {
			return t, nil
		}
	}
	num := strings.TrimPrefix(s, "UNKNOWN_TYPE_")
	n, err := strconv.ParseInt(num, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unknown registry type %q", s)
	}
	return RegType(uint32(int32(n))), nil
}

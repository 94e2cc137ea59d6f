// Package winreg exposes the live Windows registry as a types.Backend.
// Keys are opened read-only. On other platforms every OpenRoot fails with
// types.ErrUnsupported.
package winreg

import (
	"strings"
)

// Separator is the registry path separator.
const Separator = `\`

// hiveNames maps accepted root spellings to their canonical long name.
var hiveNames = map[string]string{
	"HKLM":                "HKEY_LOCAL_MACHINE",
	"HKEY_LOCAL_MACHINE":  "HKEY_LOCAL_MACHINE",
	"HKCU":                "HKEY_CURRENT_USER",
	"HKEY_CURRENT_USER":   "HKEY_CURRENT_USER",
	"HKCR":                "HKEY_CLASSES_ROOT",
	"HKEY_CLASSES_ROOT":   "HKEY_CLASSES_ROOT",
	"HKU":                 "HKEY_USERS",
	"HKEY_USERS":          "HKEY_USERS",
	"HKCC":                "HKEY_CURRENT_CONFIG",
	"HKEY_CURRENT_CONFIG": "HKEY_CURRENT_CONFIG",
}

// splitIdentifier separates `HKLM\Software\Vendor` into the canonical hive
// name and the remaining subkey path. ok is false for an unknown hive.
func splitIdentifier(identifier string) (hive, path string, ok bool) {
	identifier = strings.Trim(strings.ReplaceAll(identifier, "/", Separator), Separator)
	head, rest, _ := strings.Cut(identifier, Separator)
	hive, ok = hiveNames[strings.ToUpper(head)]
	return hive, rest, ok
}

// Backend is the live registry.
type Backend struct{}

// New returns the live registry backend.
func New() *Backend { return &Backend{} }

// Separator implements types.Backend.
func (*Backend) Separator() string { return Separator }

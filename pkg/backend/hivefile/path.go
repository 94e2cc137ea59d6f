package hivefile

import "strings"

var rootAliases = map[string]string{
	"HKLM": "HKEY_LOCAL_MACHINE",
	"HKCR": "HKEY_CLASSES_ROOT",
	"HKCU": "HKEY_CURRENT_USER",
	"HKU":  "HKEY_USERS",
	"HKCC": "HKEY_CURRENT_CONFIG",
}

func isRootAlias(seg string) bool {
	upper := strings.ToUpper(seg)
	if _, ok := rootAliases[upper]; ok {
		return true
	}
	for _, long := range rootAliases {
		if upper == long {
			return true
		}
	}
	return false
}

// segments splits identifier into path components below the root key,
// accepting either separator and dropping any prefix that names the hive
// itself.
func (h *Hive) segments(identifier string) []string {
	identifier = strings.ReplaceAll(strings.TrimSpace(identifier), "/", Separator)
	var segs []string
	for _, p := range strings.Split(identifier, Separator) {
		if p = strings.TrimSpace(p); p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) > 0 && isRootAlias(segs[0]) {
		segs = segs[1:]
	}
	if mount := h.segmentsOf(h.opts.MountPoint); len(mount) > 0 && hasFoldPrefix(segs, mount) {
		return segs[len(mount):]
	}
	if len(segs) > 0 && strings.EqualFold(segs[0], h.rootName) {
		segs = segs[1:]
	}
	return segs
}

func (h *Hive) segmentsOf(mount string) []string {
	var out []string
	for _, p := range strings.Split(mount, Separator) {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) > 0 && isRootAlias(out[0]) {
		out = out[1:]
	}
	return out
}

func hasFoldPrefix(segs, prefix []string) bool {
	if len(segs) < len(prefix) {
		return false
	}
	for i := range prefix {
		if !strings.EqualFold(segs[i], prefix[i]) {
			return false
		}
	}
	return true
}

package deviceicon

import "strconv"

// MakeKey returns the cache key for an icon-path specifier and size.
// Devices that share a specifier share the cached icon.
func MakeKey(specifier string, large bool) string {
	return specifier + "-$" + strconv.FormatBool(large)
}

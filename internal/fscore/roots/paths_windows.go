//go:build windows

package roots

import "strings"

// pathsEqual compares two canonical paths using Windows (case-insensitive)
// semantics.
func pathsEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

//go:build !windows

package pathkernel

import "github.com/mutagen-io/fscore/internal/fscore/fserrors"

// rejectDriveRelative is a no-op on POSIX, which has no concept of
// drive-relative paths (e.g. Windows' "C:foo").
func rejectDriveRelative(_ string) *fserrors.Error {
	return nil
}

// isReservedName always returns false on POSIX; there are no reserved
// device basenames to guard against.
func isReservedName(_ string) bool {
	return false
}

// isReparsePoint is always false on POSIX, which has no reparse-point
// concept distinct from symlinks.
func isReparsePoint(_ string) bool {
	return false
}

// uppercaseDriveLetter is a no-op on POSIX, which has no drive letters.
func uppercaseDriveLetter(path string) string {
	return path
}

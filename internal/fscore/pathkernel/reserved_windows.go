//go:build windows

package pathkernel

import (
	"strings"

	"golang.org/x/sys/windows"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

// reservedDeviceNames lists the Windows basenames that can never refer to a
// real file, regardless of extension.
var reservedDeviceNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true, "COM5": true,
	"COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true, "LPT5": true,
	"LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// rejectDriveRelative rejects paths like "C:foo" that are relative to the
// current directory on a given drive rather than truly absolute.
func rejectDriveRelative(input string) *fserrors.Error {
	if len(input) >= 2 && input[1] == ':' {
		// A true absolute Windows path is "C:\..." or "C:/...". Anything
		// shorter, or missing a following separator, is drive-relative.
		if len(input) == 2 || (input[2] != '\\' && input[2] != '/') {
			return fserrors.Newf(fserrors.InvalidInput, "%q is a drive-relative path", input)
		}
	}
	return nil
}

// isReservedName reports whether base (with any extension stripped) names a
// reserved MS-DOS device.
func isReservedName(base string) bool {
	name := base
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[:idx]
	}
	return reservedDeviceNames[strings.ToUpper(name)]
}

// uppercaseDriveLetter normalizes a Windows drive letter to uppercase so
// equivalent paths compare equal regardless of input case.
func uppercaseDriveLetter(path string) string {
	if len(path) >= 2 && path[1] == ':' {
		return strings.ToUpper(path[:1]) + path[1:]
	}
	return path
}

// hasReparsePointAttribute queries the raw file attributes for path and
// reports whether FILE_ATTRIBUTE_REPARSE_POINT is set. This backstops
// os.Lstat's symlink detection for junction points and other reparse-point
// kinds that some Go versions don't surface through os.FileMode.
func hasReparsePointAttribute(path string) (bool, error) {
	path16, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false, err
	}
	attrs, err := windows.GetFileAttributes(path16)
	if err != nil {
		return false, err
	}
	return attrs&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0, nil
}

// isReparsePoint reports whether path carries the reparse-point attribute,
// ignoring any error (treated conservatively as "not a reparse point", since
// the subsequent os.Lstat-based checks in the caller already cover the
// common symlink case).
func isReparsePoint(path string) bool {
	is, err := hasReparsePointAttribute(path)
	return err == nil && is
}

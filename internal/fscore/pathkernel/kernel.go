// Package pathkernel implements path-safety validation: normalization,
// symlink resolution, and containment checks against a configured set of
// allowed root directories, defeating traversal and TOCTOU-style escapes.
package pathkernel

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/roots"
)

// maxSymlinkDepth bounds symlink resolution to defeat cyclic or
// pathologically deep symlink chains.
const maxSymlinkDepth = 40

// Resolved carries both path forms validation distinguishes: the original
// requested canonical path, and the fully symlink-resolved path. Both must
// be contained in the allowed root set.
type Resolved struct {
	// Requested is the normalized form of the caller's input, before any
	// symlink resolution.
	Requested string
	// Canonical is the final, symlink-resolved path. For non-symlinks this
	// equals Requested.
	Canonical string
}

// ValidateExistingPath normalizes input, checks containment of both the
// requested and (if the target is a symlink chain) the fully resolved path,
// and requires the target to exist.
func ValidateExistingPath(ctx context.Context, input string) (Resolved, *fserrors.Error) {
	if err := assertNotAborted(ctx); err != nil {
		return Resolved{}, err
	}

	requested, ferr := normalizeAndCheckInput(input)
	if ferr != nil {
		return Resolved{}, ferr
	}

	if !roots.Contains(requested) {
		return Resolved{}, fserrors.New(fserrors.AccessDenied, "path is outside all allowed roots").WithPath(input)
	}

	canonical, ferr := resolveSymlinks(requested, 0)
	if ferr != nil {
		return Resolved{}, ferr
	}

	if !roots.Contains(canonical) {
		return Resolved{}, fserrors.New(fserrors.AccessDenied, "symlink target is outside all allowed roots").WithPath(input)
	}

	return Resolved{Requested: requested, Canonical: canonical}, nil
}

// ValidatePathForWrite normalizes input and checks containment by walking up
// to the nearest existing ancestor, checking its realpath, and then
// reapplying the remaining (not-yet-existing) segments. This defeats
// "create a symlink, then write through it" attacks.
func ValidatePathForWrite(ctx context.Context, input string) (string, *fserrors.Error) {
	if err := assertNotAborted(ctx); err != nil {
		return "", err
	}

	requested, ferr := normalizeAndCheckInput(input)
	if ferr != nil {
		return "", ferr
	}

	if !roots.Contains(requested) {
		return "", fserrors.New(fserrors.AccessDenied, "path is outside all allowed roots").WithPath(input)
	}

	// Walk up until we find an existing ancestor.
	ancestor := requested
	var remaining []string
	for {
		info, err := os.Lstat(ancestor)
		if err == nil {
			_ = info
			break
		}
		if !os.IsNotExist(err) {
			return "", fserrors.FromOSError(input, err)
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			// Reached filesystem root without finding an existing ancestor.
			return "", fserrors.New(fserrors.NotFound, "no existing ancestor directory found").WithPath(input)
		}
		remaining = append([]string{filepath.Base(ancestor)}, remaining...)
		ancestor = parent
	}

	resolvedAncestor, ferr := resolveSymlinks(ancestor, 0)
	if ferr != nil {
		return "", ferr
	}
	if !roots.Contains(resolvedAncestor) {
		return "", fserrors.New(fserrors.AccessDenied, "ancestor directory is outside all allowed roots").WithPath(input)
	}

	result := resolvedAncestor
	for _, segment := range remaining {
		result = filepath.Join(result, segment)
	}

	return result, nil
}

// normalizeAndCheckInput rejects empty input, drive-relative Windows paths,
// and reserved device basenames, then cleans the path.
func normalizeAndCheckInput(input string) (string, *fserrors.Error) {
	if input == "" {
		return "", fserrors.New(fserrors.InvalidInput, "path must not be empty")
	}

	if err := rejectDriveRelative(input); err != nil {
		return "", err
	}

	if !filepath.IsAbs(input) {
		return "", fserrors.New(fserrors.InvalidInput, "path must be absolute").WithPath(input)
	}

	cleaned := filepath.Clean(input)
	cleaned = stripTrailingSeparator(cleaned)
	cleaned = uppercaseDriveLetter(cleaned)

	if base := filepath.Base(cleaned); isReservedName(base) {
		return "", fserrors.Newf(fserrors.InvalidInput, "%q is a reserved device name", base).WithPath(input)
	}

	return cleaned, nil
}

// stripTrailingSeparator removes a trailing separator unless cleaned is the
// filesystem root.
func stripTrailingSeparator(cleaned string) string {
	if len(cleaned) > 1 && strings.HasSuffix(cleaned, string(filepath.Separator)) {
		return strings.TrimSuffix(cleaned, string(filepath.Separator))
	}
	return cleaned
}

// resolveSymlinks walks path one component at a time, joining each onto the
// already-resolved prefix, and follows any symlink encountered at any
// component — not only the final one — by recursively resolving its target
// before continuing. This defeats escapes through an intermediate symlinked
// directory, where the OS would otherwise follow the link transparently and
// leave the caller checking containment against the wrong (textual) path.
// depth bounds the total number of hops across the whole walk, defeating
// cyclic or pathologically deep symlink chains.
func resolveSymlinks(path string, depth int) (string, *fserrors.Error) {
	if depth > maxSymlinkDepth {
		return "", fserrors.New(fserrors.InvalidInput, "symlink chain exceeds maximum depth").WithPath(path)
	}

	resolved := rootPrefix(path)
	for _, comp := range pathComponents(path) {
		resolved = filepath.Join(resolved, comp)

		info, err := os.Lstat(resolved)
		if err != nil {
			return "", fserrors.FromOSError(path, err)
		}
		if info.Mode()&os.ModeSymlink == 0 && !isReparsePoint(resolved) {
			continue
		}

		target, err := os.Readlink(resolved)
		if err != nil {
			return "", fserrors.FromOSError(path, errors.Wrap(err, "unable to read symlink"))
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(resolved), target)
		}
		target = filepath.Clean(target)

		resolvedTarget, ferr := resolveSymlinks(target, depth+1)
		if ferr != nil {
			return "", ferr
		}
		resolved = resolvedTarget
	}

	return resolved, nil
}

// rootPrefix returns the volume name (empty on POSIX) plus a trailing
// separator, the starting point for rejoining path's components.
func rootPrefix(path string) string {
	return filepath.VolumeName(path) + string(filepath.Separator)
}

// pathComponents splits the non-volume portion of an absolute, cleaned path
// into its segments.
func pathComponents(path string) []string {
	rest := strings.TrimPrefix(path[len(filepath.VolumeName(path)):], string(filepath.Separator))
	if rest == "" {
		return nil
	}
	return strings.Split(rest, string(filepath.Separator))
}

func assertNotAborted(ctx context.Context) *fserrors.Error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return fserrors.New(fserrors.Unknown, "operation aborted").WithCause(ctx.Err())
	default:
		return nil
	}
}

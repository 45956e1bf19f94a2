// Package stream implements a cancellable I/O substrate: head/tail/
// line-range readers, a size-capped streaming buffer, and an atomic writer
// (temp file, fsync, rename) for an arbitrary target path.
package stream

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// temporaryNameSuffix returns a "<rand>.tmp" suffix, using a UUID for the
// random component.
func temporaryNameSuffix() string {
	id := uuid.New()
	return id.String()[:8] + ".tmp"
}

// WriteFileAtomic writes data to target via a sibling temporary file that
// is fsynced and then renamed over the target. On any failure the
// temporary file is best-effort removed.
func WriteFileAtomic(target string, data []byte, permissions os.FileMode) error {
	dir := filepath.Dir(target)
	base := filepath.Base(target)
	tempPath := filepath.Join(dir, fmt.Sprintf("%s.%s", base, temporaryNameSuffix()))

	temp, err := os.OpenFile(tempPath, os.O_RDWR|os.O_CREATE|os.O_EXCL, permissions)
	if err != nil {
		return errors.Wrap(err, "unable to create temporary file")
	}

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return errors.Wrap(err, "unable to write data to temporary file")
	}

	if err := temp.Sync(); err != nil {
		temp.Close()
		os.Remove(tempPath)
		return errors.Wrap(err, "unable to fsync temporary file")
	}

	if err := temp.Close(); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "unable to close temporary file")
	}

	if err := os.Chmod(tempPath, permissions); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "unable to set temporary file permissions")
	}

	if err := os.Rename(tempPath, target); err != nil {
		os.Remove(tempPath)
		return errors.Wrap(err, "unable to rename temporary file into place")
	}

	return nil
}

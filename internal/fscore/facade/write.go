package facade

import (
	"context"
	"os"

	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
	"github.com/mutagen-io/fscore/internal/fscore/pathkernel"
	"github.com/mutagen-io/fscore/internal/fscore/stream"
)

// defaultWritePermissions is the mode applied to newly created files:
// owner read-write, group/other read.
const defaultWritePermissions = 0o644

// WriteRequest atomically overwrites (or creates) a single file.
type WriteRequest struct {
	Path        string
	Content     []byte
	Permissions os.FileMode
}

// Write implements the write facade.
func (c *Client) Write(ctx context.Context, req WriteRequest) *fserrors.Error {
	target, ferr := pathkernel.ValidatePathForWrite(ctx, req.Path)
	if ferr != nil {
		return ferr
	}

	permissions := req.Permissions
	if permissions == 0 {
		permissions = defaultWritePermissions
	}

	if err := stream.WriteFileAtomic(target, req.Content, permissions); err != nil {
		return fserrors.FromOSError(req.Path, err)
	}
	return nil
}

package stream

import (
	"io"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

// bufferChunkSize is the read granularity used while accumulating into a
// capped buffer; it bounds how far over the cap a single read can push the
// running total before the abort check fires.
const bufferChunkSize = 64 * 1024

// ReadCapped streams r into memory, aborting the moment the running total
// exceeds cap bytes. path is used only to annotate the resulting error.
func ReadCapped(sig *cancel.Signal, path string, r io.Reader, cap int64) ([]byte, error) {
	buf := make([]byte, 0, min64(cap, bufferChunkSize))
	chunk := make([]byte, bufferChunkSize)

	for {
		if err := cancel.AssertNotAborted(sig); err != nil {
			return nil, err
		}

		n, err := r.Read(chunk)
		if n > 0 {
			if int64(len(buf)+n) > cap {
				return nil, fserrors.TooLargef(path, int64(len(buf)+n), cap)
			}
			buf = append(buf, chunk[:n]...)
		}
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

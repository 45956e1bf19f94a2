package facade

import (
	"context"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
)

// newSignal composes the per-call cancellation signal threaded through
// every facade operation, defaulting the timeout to the client's
// configured default search timeout when the caller supplies none.
func (c *Client) newSignal(ctx context.Context, timeoutMs int64) (*cancel.Signal, func()) {
	if timeoutMs <= 0 {
		timeoutMs = c.cfg.DefaultSearchTimeout.Milliseconds()
	}
	return cancel.Compose(ctx, timeoutMs)
}

// abortError translates a cancellation into a single-file operation error:
// code UNKNOWN, message "operation cancelled" or "operation timed out".
func abortError(sig *cancel.Signal) error {
	switch sig.Reason() {
	case cancel.Timeout:
		return cancel.ErrTimeout
	default:
		return cancel.ErrCancelled
	}
}

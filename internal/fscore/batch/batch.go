// Package batch implements multi-path helpers shared by the facade
// operations that fan out over several files: a bounded-concurrency
// parallel map preserving input order, and a pre-flight byte-budget check
// for multi-file reads.
package batch

import (
	"sync"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

// defaultConcurrency bounds fan-out when a caller passes concurrency <= 0.
const defaultConcurrency = 8

// Map applies fn to every element of inputs with at most concurrency
// in-flight at once, returning results in input order. A per-item error
// never aborts the batch: it is recorded at that item's index and every
// other item still runs to completion, unless sig fires, in which case
// unstarted items resolve as cancellation errors without ever calling fn.
func Map[T any, R any](sig *cancel.Signal, inputs []T, concurrency int, fn func(T) (R, error)) ([]R, []error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]R, len(inputs))
	errs := make([]error, len(inputs))

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, in := range inputs {
		if err := cancel.AssertNotAborted(sig); err != nil {
			errs[i] = err
			continue
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(i int, in T) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := cancel.AssertNotAborted(sig); err != nil {
				errs[i] = err
				return
			}
			r, err := fn(in)
			results[i] = r
			errs[i] = err
		}(i, in)
	}

	wg.Wait()
	return results, errs
}

// Sizer reports the byte size a batch item would consume, used by
// CheckBudget to pre-flight a multi-path request before any file is
// opened.
type Sizer func(path string) (int64, error)

// CheckBudget sums the sizes reported by size for every path and rejects
// the whole batch with E_TOO_LARGE before any read begins if the total
// exceeds limit, rather than failing partway through a multi-file read.
func CheckBudget(paths []string, limit int64, size Sizer) (int64, *fserrors.Error) {
	var total int64
	for _, path := range paths {
		n, err := size(path)
		if err != nil {
			return 0, fserrors.FromOSError(path, err)
		}
		total += n
		if limit > 0 && total > limit {
			return total, fserrors.TooLargef(path, total, limit)
		}
	}
	return total, nil
}

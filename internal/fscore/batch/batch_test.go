package batch

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/fserrors"
)

func TestMapPreservesOrder(t *testing.T) {
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	inputs := []int{1, 2, 3, 4, 5}
	results, errs := Map(sig, inputs, 2, func(n int) (int, error) {
		return n * n, nil
	})

	want := []int{1, 4, 9, 16, 25}
	for i := range want {
		if results[i] != want[i] {
			t.Errorf("results[%d] = %d, want %d", i, results[i], want[i])
		}
		if errs[i] != nil {
			t.Errorf("errs[%d] = %v, want nil", i, errs[i])
		}
	}
}

func TestMapRecordsPerItemErrorsWithoutAbortingBatch(t *testing.T) {
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	inputs := []int{1, 2, 3}
	results, errs := Map(sig, inputs, 4, func(n int) (int, error) {
		if n == 2 {
			return 0, errors.New("boom")
		}
		return n, nil
	})

	if errs[1] == nil {
		t.Fatal("expected an error at index 1")
	}
	if errs[0] != nil || errs[2] != nil {
		t.Fatal("expected the other items to succeed")
	}
	if results[0] != 1 || results[2] != 3 {
		t.Fatalf("got results %v", results)
	}
}

func TestMapRespectsConcurrencyBound(t *testing.T) {
	sig, cleanup := cancel.Compose(nil, 0)
	defer cleanup()

	var current, max int64
	inputs := make([]int, 20)
	Map(sig, inputs, 3, func(int) (struct{}, error) {
		n := atomic.AddInt64(&current, 1)
		for {
			m := atomic.LoadInt64(&max)
			if n <= m || atomic.CompareAndSwapInt64(&max, m, n) {
				break
			}
		}
		atomic.AddInt64(&current, -1)
		return struct{}{}, nil
	})

	if max > 3 {
		t.Fatalf("observed %d concurrent calls, want <= 3", max)
	}
}

func TestMapCancelledSignalSkipsUnstartedItems(t *testing.T) {
	sig, cleanup := cancel.Compose(nil, 1)
	defer cleanup()
	<-sig.Done()

	inputs := []int{1, 2, 3}
	_, errs := Map(sig, inputs, 2, func(n int) (int, error) {
		return n, nil
	})

	for i, err := range errs {
		if err == nil {
			t.Errorf("errs[%d] = nil, want a cancellation error", i)
		}
	}
}

func TestCheckBudgetUnderLimit(t *testing.T) {
	sizes := map[string]int64{"a": 10, "b": 20}
	total, ferr := CheckBudget([]string{"a", "b"}, 100, func(p string) (int64, error) {
		return sizes[p], nil
	})
	if ferr != nil {
		t.Fatalf("unexpected error: %v", ferr)
	}
	if total != 30 {
		t.Fatalf("got total %d, want 30", total)
	}
}

func TestCheckBudgetOverLimit(t *testing.T) {
	sizes := map[string]int64{"a": 60, "b": 60}
	_, ferr := CheckBudget([]string{"a", "b"}, 100, func(p string) (int64, error) {
		return sizes[p], nil
	})
	if ferr == nil || ferr.Code != fserrors.TooLarge {
		t.Fatalf("got %v, want a TooLarge error", ferr)
	}
}

func TestCheckBudgetStopsAtFirstSizerError(t *testing.T) {
	_, ferr := CheckBudget([]string{"missing"}, 100, func(p string) (int64, error) {
		return 0, errors.New("no such file")
	})
	if ferr == nil {
		t.Fatal("expected an error when the sizer fails")
	}
}

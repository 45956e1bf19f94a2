// Package workerpool implements a pre-warmed scan worker pool: a fixed set
// of long-lived workers that consume scan requests from a queue, each with
// cancellation and an independent matcher cache. Each submitted request
// gets its own result channel, selected against the pool's shutdown
// signal.
package workerpool

import (
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/mutagen-io/fscore/internal/fscore/cancel"
	"github.com/mutagen-io/fscore/internal/fscore/logging"
	"github.com/mutagen-io/fscore/internal/fscore/search"
)

// Size computes the default pool size: min(max(cpus,4),32), overridable by
// the SEARCH_WORKERS environment variable at the config layer.
func Size() int {
	n := runtime.NumCPU()
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return n
}

// ScanRequest is a worker task. ID is generated with github.com/google/uuid
// so cancellation by ID is collision-free across the lifetime of the
// process.
type ScanRequest struct {
	ID            string
	ResolvedPath  string
	RequestedPath string
	Pattern       string
	MatcherOpts   search.MatcherOptions
	ScanOpts      search.ScanOptions
}

// NewScanRequest constructs a ScanRequest with a fresh ID.
func NewScanRequest(resolvedPath, requestedPath, pattern string, mOpts search.MatcherOptions, sOpts search.ScanOptions) ScanRequest {
	return ScanRequest{
		ID:            uuid.NewString(),
		ResolvedPath:  resolvedPath,
		RequestedPath: requestedPath,
		Pattern:       pattern,
		MatcherOpts:   mOpts,
		ScanOpts:      sOpts,
	}
}

// ScanOutcome is the resolved result of a ScanRequest: either a successful
// FileScanResult or an error, tagged with the request ID and whether it was
// cancelled (cancellation is a non-error outcome).
type ScanOutcome struct {
	ID        string
	Path      string
	Result    search.FileScanResult
	Err       error
	Cancelled bool
}

type task struct {
	request  ScanRequest
	sig      *cancel.Signal
	results  chan<- ScanOutcome
}

// Pool is a fixed-size, pre-warmed collection of scan workers. Each worker
// maintains its own matcher cache and processes one scan at a time from a
// shared inbound queue.
type Pool struct {
	tasks     chan task
	cancelMu  sync.Mutex
	cancelled map[string]bool
	shutdown  chan struct{}
	wg        sync.WaitGroup
	logger    *logging.Logger
}

// New starts a pool of size workers. Workers run until Shutdown is called.
func New(size int, logger *logging.Logger) *Pool {
	if size <= 0 {
		size = Size()
	}
	p := &Pool{
		tasks:     make(chan task, size*4),
		cancelled: make(map[string]bool),
		shutdown:  make(chan struct{}),
		logger:    logger,
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}
	return p
}

func (p *Pool) runWorker(index int) {
	defer p.wg.Done()
	log := p.logger.Sublogger("worker").Sublogger(uuid.NewString()[:8])
	cache := search.NewMatcherCache()

	for {
		select {
		case <-p.shutdown:
			p.drain(cache, log)
			return
		case t, ok := <-p.tasks:
			if !ok {
				return
			}
			p.execute(t, cache, log)
		}
	}
}

// drain resolves any tasks still sitting in the queue as cancellations
// before the worker returns.
func (p *Pool) drain(cache *search.MatcherCache, log *logging.Logger) {
	for {
		select {
		case t := <-p.tasks:
			t.results <- ScanOutcome{ID: t.request.ID, Path: t.request.ResolvedPath, Cancelled: true}
		default:
			return
		}
	}
}

func (p *Pool) execute(t task, cache *search.MatcherCache, log *logging.Logger) {
	p.cancelMu.Lock()
	cancelled := p.cancelled[t.request.ID]
	p.cancelMu.Unlock()
	if cancelled || (t.sig != nil && t.sig.Fired()) {
		t.results <- ScanOutcome{ID: t.request.ID, Path: t.request.ResolvedPath, Cancelled: true}
		return
	}

	matcher, ferr := cache.GetOrCompile(t.request.Pattern, t.request.MatcherOpts)
	if ferr != nil {
		t.results <- ScanOutcome{ID: t.request.ID, Path: t.request.ResolvedPath, Err: ferr}
		return
	}

	result, err := search.ScanFile(t.sig, t.request.ResolvedPath, matcher, t.request.ScanOpts)
	if err != nil {
		log.Error(err)
		t.results <- ScanOutcome{ID: t.request.ID, Path: t.request.ResolvedPath, Err: err}
		return
	}

	p.cancelMu.Lock()
	delete(p.cancelled, t.request.ID)
	p.cancelMu.Unlock()

	t.results <- ScanOutcome{ID: t.request.ID, Path: t.request.ResolvedPath, Result: result, Cancelled: result.Cancelled}
}

// Submit enqueues a scan request and returns a channel that will receive
// exactly one ScanOutcome.
func (p *Pool) Submit(request ScanRequest, sig *cancel.Signal) <-chan ScanOutcome {
	results := make(chan ScanOutcome, 1)
	select {
	case <-p.shutdown:
		results <- ScanOutcome{ID: request.ID, Path: request.ResolvedPath, Cancelled: true}
		return results
	default:
	}
	select {
	case p.tasks <- task{request: request, sig: sig, results: results}:
	case <-p.shutdown:
		results <- ScanOutcome{ID: request.ID, Path: request.ResolvedPath, Cancelled: true}
	}
	return results
}

// Cancel marks id as cancelled. If the task hasn't started yet, it will
// resolve as cancelled once dequeued; if it's already running, the
// request's signal firing is what actually stops work — Cancel here only
// records intent for tasks not carrying their own per-request signal.
func (p *Pool) Cancel(id string) {
	p.cancelMu.Lock()
	defer p.cancelMu.Unlock()
	p.cancelled[id] = true
}

// Shutdown stops accepting new work, drains the queue as cancellations, and
// waits for all workers to exit.
func (p *Pool) Shutdown() {
	close(p.shutdown)
	p.wg.Wait()
}

// Package parallel provides a small worker pool for running
// independent, index-addressed tasks such as per-row transform work.
//
// A nil *Pool is valid and runs everything sequentially, so callers can
// thread an optional pool through without nil checks. Results are
// identical regardless of worker count: tasks may not share mutable
// state.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool schedules index-addressed tasks across a fixed number of
// goroutines.
type Pool struct {
	workers int
}

// New returns a pool with the given number of workers. workers <= 0
// selects runtime.NumCPU(); workers == 1 gives a sequential pool.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers reports the worker count; a nil pool reports 1.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run invokes fn(i) for every i in [0, n) and returns once all calls
// have completed. Tasks are claimed with an atomic counter so cheap and
// expensive tasks balance across workers. With a nil pool, a single
// worker, or n <= 1, fn runs on the calling goroutine in index order.
func (p *Pool) Run(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	workers := p.Workers()
	if workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}

	var next atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				i := int(next.Add(1)) - 1
				if i >= n {
					return
				}
				fn(i)
			}
		}()
	}
	wg.Wait()
}

package workers

import (
	"context"
	"sync"
)

type Workers struct {
	workers []Worker
}

// New groups workers to be run together.
func New(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Add appends w to the group. It has no effect on a group that is running.
func (w *Workers) Add(worker Worker) {
	w.workers = append(w.workers, worker)
}

// Len reports how many workers the group holds.
func (w *Workers) Len() int {
	return len(w.workers)
}

// Run starts every worker in its own goroutine and blocks until all of them
// have returned.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker.Run(ctx)
		}()
	}
	wg.Wait()
}

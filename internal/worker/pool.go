// internal/worker/pool.go
package worker

import (
	"sync"
)

// Pool bounds the number of concurrently running tasks.
type Pool struct {
	wg    sync.WaitGroup
	slots chan struct{}
}

// NewPool creates a pool running at most size tasks at a time.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		slots: make(chan struct{}, size),
	}
}

// Submit schedules a task, blocking until a slot is free.
func (p *Pool) Submit(task func()) {
	p.wg.Add(1)
	p.slots <- struct{}{} // Acquire a slot

	go func() {
		defer func() {
			<-p.slots // Release the slot
			p.wg.Done()
		}()

		task()
	}()
}

// Wait blocks until all submitted tasks have finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

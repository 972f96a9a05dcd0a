package worker

import (
	"context"
	"sync"
)

// Pool bounds how many renders execute concurrently. Submission blocks only
// on slot acquisition, never on job completion, so the intake loop naturally
// stops draining the queue while every slot is busy.
type Pool struct {
	slots chan struct{}
	wg    sync.WaitGroup
}

// NewPool creates a pool with size execution slots.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = 4
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the number of execution slots.
func (p *Pool) Size() int {
	return cap(p.slots)
}

// Submit acquires a slot and runs fn on its own goroutine, releasing the
// slot when fn returns. It blocks while all slots are busy and returns the
// context error if ctx is canceled before a slot frees up.
func (p *Pool) Submit(ctx context.Context, fn func()) error {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.slots
			p.wg.Done()
		}()
		fn()
	}()

	return nil
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

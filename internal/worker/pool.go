// Package worker provides a small fixed-size task pool. It is used for the
// newsletter fan-out, which runs after the entry transaction has committed
// so that mail failures cannot abort it.
package worker

import (
	"sync"
)

type task func()

type Pool struct {
	wg       sync.WaitGroup
	jobs     chan task
	stopOnce sync.Once
}

// NewPool starts n workers draining a buffered job queue.
func NewPool(n int) *Pool {
	p := &Pool{jobs: make(chan task, 256)}
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				job()
			}
		}()
	}
	return p
}

// Submit enqueues a task. It blocks once the queue is full.
func (p *Pool) Submit(f func()) {
	p.jobs <- f
}

// Stop closes the queue and waits for in-flight tasks to finish.
// It is safe to call more than once.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

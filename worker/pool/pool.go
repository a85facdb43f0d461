package pool

import (
	"context"
	"sync"

	"newsVoice/worker/kafka"
)

// WorkerPool bounds how many stage units run concurrently. Units for
// different articles proceed in parallel; the per-(article, stage)
// exclusion is handled by in-flight markers, not by the pool.
type WorkerPool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func NewWorkerPool(maxWorkers int) *WorkerPool {
	return &WorkerPool{
		sem: make(chan struct{}, maxWorkers),
	}
}

func (p *WorkerPool) Submit(ctx context.Context, msg *kafka.StageMessage, handler func(context.Context, *kafka.StageMessage) error) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
			defer func() { <-p.sem }()
			handler(ctx, msg)
		case <-ctx.Done():
		}
	}()
}

func (p *WorkerPool) Wait() {
	p.wg.Wait()
}

// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"lexa-chat/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// A small worker pool that runs intents off the UI goroutine.

var ErrQueueFull = errors.New("worker queue full")

type Task func(ctx context.Context) error

type job struct {
	name string
	run  Task
}

type Pool struct {
	wg   sync.WaitGroup
	jobs chan job
	quit chan struct{}
	once sync.Once
	n    int
	log  *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	l := logger.With().Str("component", "WorkerPool").Logger()
	return &Pool{jobs: make(chan job, workers*4), quit: make(chan struct{}), n: workers, log: &l}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case j := <-p.jobs:
					p.run(ctx, id, j)
				}
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, id int, j job) {
	defer func() {
		if r := recover(); r != nil {
			metrics.IncWorkerTask(j.name, "panic")
			p.log.Error().Int("worker", id).Str("task", j.name).Interface("panic", r).Msg("task panicked")
		}
	}()
	if err := j.run(ctx); err != nil {
		metrics.IncWorkerTask(j.name, "error")
		p.log.Debug().Int("worker", id).Str("task", j.name).Err(err).Msg("task error")
		return
	}
	metrics.IncWorkerTask(j.name, "ok")
}

// Stop is idempotent and waits for running tasks to return.
func (p *Pool) Stop() {
	p.once.Do(func() { close(p.quit) })
	p.wg.Wait()
}

func (p *Pool) Submit(name string, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- job{name: name, run: task}:
		return nil
	default:
		// drop when saturated rather than block the caller
		metrics.IncWorkerTask(name, "dropped")
		return ErrQueueFull
	}
}

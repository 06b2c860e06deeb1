package worker

import (
	"context"
	"log"
	"sync"

	"game-translator/src/pipeline"
	"game-translator/src/render"
)

// Runner executes one pipeline iteration.
type Runner interface {
	Run(ctx context.Context, cfg pipeline.Config) (*render.Frame, error)
}

// ResultCallback is invoked on iteration completion (from a worker goroutine).
// The controller passes a closure that posts back into its own loop.
type ResultCallback func(frame *render.Frame, err error)

// Pool runs jobs on a fixed number of goroutines behind a 1-slot queue
// (strict back-pressure).
//
// A job abandoned at its deadline keeps its worker until it really returns,
// so at most one OCR or browser interaction per worker is ever in flight.
type Pool struct {
	runner Runner
	jobs   chan job
	wg     sync.WaitGroup
}

type job struct {
	ctx context.Context
	run func(ctx context.Context) (*render.Frame, error)
	cb  ResultCallback
}

// New creates a pool. Size defaults to 1 when size<=0; the translation
// client serializes browser work anyway.
func New(runner Runner, size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{runner: runner, jobs: make(chan job, 1)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				frame, finished, err := runWithContext(j.ctx, j.run)
				if err != nil {
					log.Printf("worker: job failed: %v", err)
				}
				j.cb(frame, err)
				select {
				case <-finished:
				default:
					log.Printf("worker: waiting for abandoned job to return")
					<-finished
				}
			}
		}()
	}
}

// Submit enqueues an iteration if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, cfg pipeline.Config, cb ResultCallback) bool {
	cfg = cfg.Clone()
	return p.enqueue(job{
		ctx: ctx,
		run: func(ctx context.Context) (*render.Frame, error) { return p.runner.Run(ctx, cfg) },
		cb:  cb,
	})
}

// SubmitFunc enqueues fn on the same workers as iterations, so a pre-flight
// check never overlaps a running iteration.
func (p *Pool) SubmitFunc(ctx context.Context, fn func(ctx context.Context) error, cb func(error)) bool {
	return p.enqueue(job{
		ctx: ctx,
		run: func(ctx context.Context) (*render.Frame, error) { return nil, fn(ctx) },
		cb:  func(_ *render.Frame, err error) { cb(err) },
	})
}

func (p *Pool) enqueue(j job) bool {
	select {
	case p.jobs <- j:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// runWithContext returns as soon as ctx ends, even when a stage blocks
// without watching ctx (the OCR engine does not). finished closes once fn
// has actually returned.
func runWithContext(ctx context.Context, fn func(context.Context) (*render.Frame, error)) (*render.Frame, <-chan struct{}, error) {
	finished := make(chan struct{})
	if err := ctx.Err(); err != nil {
		close(finished)
		return nil, finished, err
	}
	if _, ok := ctx.Deadline(); !ok {
		defer close(finished)
		frame, err := fn(ctx)
		return frame, finished, err
	}
	type result struct {
		frame *render.Frame
		err   error
	}
	resCh := make(chan result, 1)
	go func() {
		defer close(finished)
		frame, err := fn(ctx)
		resCh <- result{frame, err}
	}()
	select {
	case res := <-resCh:
		return res.frame, finished, res.err
	case <-ctx.Done():
		// the job's result is dropped; the worker still waits on finished
		return nil, finished, ctx.Err()
	}
}

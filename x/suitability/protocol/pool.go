package protocol

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// JobResult is delivered once per submitted job.
type JobResult struct {
	JobID  string
	Result *ProofResult
	Err    error
}

// Pool runs proof jobs off the caller's goroutine with bounded concurrency.
type Pool struct {
	orch    *Orchestrator
	sem     *semaphore.Weighted
	limiter *rate.Limiter
	wg      sync.WaitGroup
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithRateLimit caps how often jobs may start, in jobs per second with the
// given burst. A non-positive limit leaves starts unlimited.
func WithRateLimit(limit float64, burst int) PoolOption {
	return func(p *Pool) {
		if limit <= 0 {
			p.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		p.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// NewPool returns a pool running at most workers proofs at once.
func NewPool(orch *Orchestrator, workers int, opts ...PoolOption) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", workers)
	}
	p := &Pool{
		orch: orch,
		sem:  semaphore.NewWeighted(int64(workers)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Submit queues req and returns its job id and a channel that receives
// exactly one JobResult. A job still waiting for its rate-limit slot or a
// worker when ctx is done reports the context error.
func (p *Pool) Submit(ctx context.Context, req ProofRequest) (string, <-chan JobResult) {
	jobID := uuid.NewString()
	out := make(chan JobResult, 1)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer close(out)

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				out <- JobResult{JobID: jobID, Err: err}
				return
			}
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			out <- JobResult{JobID: jobID, Err: err}
			return
		}
		defer p.sem.Release(1)

		res, err := p.orch.build(ctx, jobID, req)
		out <- JobResult{JobID: jobID, Result: res, Err: err}
	}()

	return jobID, out
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

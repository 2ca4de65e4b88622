package colorgate

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

type Result interface{}
type Job func() Result

// Executor runs jobs while holding a Waiter.
type Executor interface {
	Execute(ctx context.Context, job Job) (Result, error)
	// Wait blocks until every job started by Execute has released the
	// waiter, including jobs whose Execute call returned early.
	Wait()
}

type executor struct {
	waiter Waiter
	jobs   sync.WaitGroup
}

func NewExecutor(w Waiter) Executor {
	return &executor{
		waiter: w,
	}
}

// Execute waits for admission, then runs job on its own goroutine. If ctx
// ends first, Execute returns early; the job still runs to completion and
// releases the waiter afterwards. A result is only returned once the waiter
// has been released.
func (executor *executor) Execute(ctx context.Context, job Job) (Result, error) {
	err := executor.waiter.Acquire(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resource was not granted")
	}

	// Buffered so the job goroutine never blocks on an abandoned result.
	ch := make(chan Result, 1)
	executor.jobs.Add(1)
	go func() {
		defer executor.jobs.Done()
		res := job()
		executor.waiter.Release()
		ch <- res
	}()

	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), "job is cancelled")
	}
}

func (executor *executor) Wait() {
	executor.jobs.Wait()
}

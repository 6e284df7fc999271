// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package fanout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/muster-ops/muster/lib/clock"
	"github.com/muster-ops/muster/lib/script"
)

// ErrInvalidWorkerCount is returned by Dispatch before any work starts
// when Workers is not a positive integer.
var ErrInvalidWorkerCount = errors.New("invalid worker count")

// Runner executes one job. Implementations must return a well-formed
// Result for every call; failures are classified in the Result, never
// raised.
type Runner interface {
	Run(ctx context.Context, job Job) Result
}

// Reporter receives one Result per completed job, potentially from
// many workers at once. Implementations must be safe for concurrent
// use.
type Reporter interface {
	Report(result Result)
}

// Tally summarizes a run.
type Tally struct {
	// Completed is the number of jobs that produced a Result.
	Completed int

	// Failed is how many of those Results carry a failure.
	Failed int
}

// Dispatcher owns the worker pool for one run.
type Dispatcher struct {
	// Workers is the pool size. Dispatch starts exactly this many
	// workers; a value below 1 fails validation before anything runs.
	Workers int

	// Jumpbox is stamped onto every Job. Empty means direct
	// connections.
	Jumpbox string

	// Runner executes jobs.
	Runner Runner

	// Reporter receives results as they complete.
	Reporter Reporter

	// Logger receives progress and lifecycle diagnostics. nil means
	// slog.Default().
	Logger *slog.Logger

	// Clock drives progress ticks and duration stamps. nil means
	// clock.Real().
	Clock clock.Clock

	// ProgressInterval is how often an in-flight run logs its
	// completed/total counts. Zero disables progress logging.
	ProgressInterval time.Duration
}

// Dispatch runs the script on every host and returns after the queue
// is drained and all in-flight jobs have reported. The returned error
// is non-nil only for validation failures (ErrInvalidWorkerCount,
// before any side effects) and context cancellation (after which the
// Tally covers the jobs that completed before the stop).
func (d *Dispatcher) Dispatch(ctx context.Context, hosts []string, sc script.Script) (Tally, error) {
	if d.Workers < 1 {
		return Tally{}, fmt.Errorf("%w: %d, need at least 1", ErrInvalidWorkerCount, d.Workers)
	}

	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.Real()
	}

	queue := make(chan string, len(hosts))
	for _, host := range hosts {
		queue <- host
	}
	close(queue)

	var completed, failed atomic.Int64

	progressDone := make(chan struct{})
	stopProgress := make(chan struct{})
	if d.ProgressInterval > 0 {
		go func() {
			defer close(progressDone)
			d.logProgress(clk, logger, len(hosts), &completed, &failed, stopProgress)
		}()
	} else {
		close(progressDone)
	}

	var wg sync.WaitGroup
	for i := 0; i < d.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for host := range queue {
				if ctx.Err() != nil {
					return
				}
				start := clk.Now()
				result := d.Runner.Run(ctx, Job{Host: host, Script: sc, Jumpbox: d.Jumpbox})
				result.Duration = clk.Since(start)
				d.Reporter.Report(result)
				completed.Add(1)
				if !result.OK() {
					failed.Add(1)
				}
			}
		}()
	}

	wg.Wait()
	close(stopProgress)
	<-progressDone

	tally := Tally{
		Completed: int(completed.Load()),
		Failed:    int(failed.Load()),
	}
	if err := ctx.Err(); err != nil {
		return tally, err
	}
	return tally, nil
}

// logProgress emits completed/total counts on every clock tick until
// stop closes.
func (d *Dispatcher) logProgress(clk clock.Clock, logger *slog.Logger, total int, completed, failed *atomic.Int64, stop <-chan struct{}) {
	ticker := clk.NewTicker(d.ProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Info("run in progress",
				"completed", completed.Load(),
				"failed", failed.Load(),
				"total", total,
			)
		case <-stop:
			return
		}
	}
}

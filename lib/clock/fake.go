// Copyright 2026 The Muster Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock pinned to initial. Time moves only when
// Advance is called.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	c := &FakeClock{current: initial}
	c.registered = sync.NewCond(&c.mu)
	return c
}

// FakeClock is a deterministic Clock for tests. Tickers fire only
// when Advance moves the clock past their deadline.
type FakeClock struct {
	mu         sync.Mutex
	current    time.Time
	tickers    []*fakeTicker
	registered *sync.Cond
}

type fakeTicker struct {
	deadline time.Time
	interval time.Duration
	channel  chan time.Time
	stopped  bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Since returns the fake time elapsed since t.
func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// NewTicker registers a ticker that fires when Advance crosses its
// deadline, rescheduling at the given interval each time. Panics if
// d <= 0, matching time.NewTicker.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	ticker := &fakeTicker{
		deadline: c.current.Add(d),
		interval: d,
		channel:  channel,
	}
	c.tickers = append(c.tickers, ticker)
	c.registered.Broadcast()

	return &Ticker{
		C: channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose
// deadline now falls in the past, in deadline order. A ticker whose
// consumer has not drained the previous tick drops the new one,
// matching time.Ticker.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	for {
		due := c.dueLocked()
		if len(due) == 0 {
			return
		}
		sort.Slice(due, func(i, j int) bool {
			return due[i].deadline.Before(due[j].deadline)
		})
		for _, ticker := range due {
			select {
			case ticker.channel <- ticker.deadline:
			default:
			}
			ticker.deadline = ticker.deadline.Add(ticker.interval)
		}
	}
}

// dueLocked returns the live tickers whose deadline has passed.
// Caller must hold c.mu.
func (c *FakeClock) dueLocked() []*fakeTicker {
	var due []*fakeTicker
	for _, ticker := range c.tickers {
		if ticker.stopped {
			continue
		}
		if !ticker.deadline.After(c.current) {
			due = append(due, ticker)
		}
	}
	return due
}

// WaitForTickers blocks until at least n tickers are registered and
// not stopped. Tests call it before Advance to close the race between
// a goroutine creating its ticker and the test firing it.
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.liveCountLocked() < n {
		c.registered.Wait()
	}
}

// PendingCount returns the number of live tickers.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.liveCountLocked()
}

func (c *FakeClock) liveCountLocked() int {
	count := 0
	for _, ticker := range c.tickers {
		if !ticker.stopped {
			count++
		}
	}
	return count
}

// Package engine provides the month-based campaign loop and the monthly
// update steps it drives.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Calendar layers relative to the month counter.
const (
	MonthsPerQuarter = 3
	MonthsPerYear    = 12
)

// Engine drives the campaign calendar forward one simulated month per step.
type Engine struct {
	Month    uint64        // Months elapsed since the campaign start (monotonic)
	Interval time.Duration // Real time per simulated month at speed 1

	// Callbacks for each calendar layer, populated during setup.
	OnMonth   func(month uint64)
	OnQuarter func(month uint64)
	OnYear    func(month uint64)

	mu    sync.Mutex
	speed float64 // 1.0 = one month per Interval, 0 = paused

	// stepMu serializes Step between Run and manual ticks.
	stepMu sync.Mutex
}

// NewEngine creates an engine resuming at the given month.
func NewEngine(month uint64, interval time.Duration) *Engine {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Engine{
		Month:    month,
		Interval: interval,
		speed:    1.0,
	}
}

// Speed returns the current speed multiplier.
func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

// SetSpeed changes the multiplier. Zero or below pauses.
func (e *Engine) SetSpeed(speed float64) {
	e.mu.Lock()
	e.speed = max(speed, 0)
	e.mu.Unlock()
}

// Run advances the calendar until ctx is cancelled.
func (e *Engine) Run(ctx context.Context) error {
	slog.Info("simulation engine started", "month", e.CurrentMonth(), "speed", e.Speed())
	defer func() { slog.Info("simulation engine stopped", "month", e.CurrentMonth()) }()

	for {
		speed := e.Speed()
		wait := 100 * time.Millisecond
		if speed > 0 {
			start := time.Now()
			e.Step()
			wait = max(time.Duration(float64(e.Interval)/speed)-time.Since(start), 0)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// CurrentMonth returns the last month stepped.
func (e *Engine) CurrentMonth() uint64 {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()
	return e.Month
}

// Step advances the calendar by one month and fires the callbacks.
func (e *Engine) Step() {
	e.stepMu.Lock()
	defer e.stepMu.Unlock()
	e.Month++

	if e.OnMonth != nil {
		e.OnMonth(e.Month)
	}
	if e.Month%MonthsPerQuarter == 0 && e.OnQuarter != nil {
		e.OnQuarter(e.Month)
	}
	if e.Month%MonthsPerYear == 0 && e.OnYear != nil {
		e.OnYear(e.Month)
	}
}

// SimDate returns the calendar date a month counter corresponds to.
func SimDate(start time.Time, month uint64) time.Time {
	return start.AddDate(0, int(month), 0)
}

// SimTime formats a month counter for logs, e.g. "March 2027".
func SimTime(start time.Time, month uint64) string {
	return SimDate(start, month).Format("January 2006")
}

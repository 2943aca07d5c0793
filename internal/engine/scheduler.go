// Package engine drives the simulation: the scheduler advances the
// calendar one hour at a time and the world runs every subsystem inside
// that tick.
package engine

import (
	"log/slog"
	"time"

	"github.com/protheus99/econsim-sub000/internal/clock"
)

// Scheduler owns simulated time. Ticks are strictly sequential: all
// per-hour work completes before the next hour begins, so shared firm
// and market state is only ever touched by the single active tick.
type Scheduler struct {
	Hours    uint64        // next hour to process (monotonic)
	Speed    int           // simulated hours per driver firing
	Interval time.Duration // wall-clock time between firings
	Paused   bool

	running bool

	// Cascade callbacks, fired in order within one tick.
	OnHour  func(t clock.GameTime)
	OnDay   func(t clock.GameTime)
	OnMonth func(t clock.GameTime)
	OnYear  func(t clock.GameTime)
}

// NewScheduler creates a scheduler at hour zero, unpaused, 1×.
func NewScheduler() *Scheduler {
	return &Scheduler{
		Speed:    1,
		Interval: time.Second,
	}
}

// Run blocks, firing Speed sequential ticks per interval until Stop.
// Pausing skips tick execution without interrupting one in progress.
func (s *Scheduler) Run() {
	s.running = true
	slog.Info("scheduler started", "hour", s.Hours, "speed", s.Speed)

	for s.running {
		if s.Paused {
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		n := s.Speed
		if n < 1 {
			n = 1
		}
		for i := 0; i < n && s.running && !s.Paused; i++ {
			s.Tick()
		}

		if elapsed := time.Since(start); elapsed < s.Interval {
			time.Sleep(s.Interval - elapsed)
		}
	}

	slog.Info("scheduler stopped", "hour", s.Hours)
}

// Stop halts the loop after the current tick.
func (s *Scheduler) Stop() {
	s.running = false
}

// Pause freezes time. No other path advances the clock.
func (s *Scheduler) Pause() { s.Paused = true }

// Resume unfreezes time.
func (s *Scheduler) Resume() { s.Paused = false }

// SetSpeed sets the hours-per-firing multiplier, clamped to [1, 1000].
func (s *Scheduler) SetSpeed(speed int) {
	if speed < 1 {
		speed = 1
	}
	if speed > 1000 {
		speed = 1000
	}
	s.Speed = speed
}

// Tick advances exactly one simulated hour, cascading hourly, daily,
// monthly, and yearly work in that order.
func (s *Scheduler) Tick() {
	t := clock.At(s.Hours)
	s.Hours++

	if s.OnHour != nil {
		s.OnHour(t)
	}
	if t.DayBoundary() && s.OnDay != nil {
		s.OnDay(t)
	}
	if t.MonthBoundary() && s.OnMonth != nil {
		s.OnMonth(t)
	}
	if t.YearBoundary() && s.OnYear != nil {
		s.OnYear(t)
	}
}

// Now returns the time of the next hour to process.
func (s *Scheduler) Now() clock.GameTime {
	return clock.At(s.Hours)
}

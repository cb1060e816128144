// Package sched provides a cooperative periodic task: an action that
// runs at most once per period, driven by repeated non-blocking Update
// calls from a polling loop rather than a sleeping goroutine. Many
// tasks can share one loop without starving each other or the input
// polling between them.
package sched

import (
	"time"

	"github.com/pkg/errors"
)

// Task invokes an action at a bounded maximum rate. The owning loop
// calls Update on every iteration; the action runs only once at least
// one full period has elapsed since it last finished. The loop's call
// cadence is not guaranteed, so the actual interval between fires is
// at least the period, never exactly it.
type Task struct {
	period time.Duration
	last   time.Time
	action func() error
	now    func() time.Time
}

// New creates a task that fires action at most frequency times per
// second. The frequency must be positive.
func New(frequency float64, action func() error) (*Task, error) {
	if frequency <= 0 {
		return nil, errors.Errorf("frequency must be positive, got %g", frequency)
	}
	if action == nil {
		return nil, errors.New("nil action")
	}
	return &Task{
		period: time.Duration(float64(time.Second) / frequency),
		action: action,
		now:    time.Now,
	}, nil
}

// Period returns the minimum spacing between fires.
func (t *Task) Period() time.Duration { return t.period }

// Update fires the action once if more than a full period has elapsed
// since the last fire. Elapsing exactly one period is not enough. The
// last-fire time is taken after the action returns, so the spacing
// between fires is the period plus the action's own duration. The
// first Update after construction always fires.
//
// Update never blocks beyond the action itself and must only be called
// from the loop that owns the task.
func (t *Task) Update() error {
	now := t.now()
	if !now.After(t.last.Add(t.period)) {
		return nil
	}

	err := t.action()
	t.last = t.now()
	return err
}

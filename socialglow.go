// Package socialglow implements the social battery board: a
// touchscreen status selector that drives a sparkle animation on an
// addressable LED strip behind a serial link.
package socialglow

import (
	"context"
	"image"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"libdb.so/socialglow/internal/led"
	"libdb.so/socialglow/internal/ledanim"
	"libdb.so/socialglow/internal/sched"
	"libdb.so/socialglow/internal/touchui"
)

// TouchScreen yields touch points from the panel. A poll returns
// either nothing or a single point; it must not block for longer than
// a single hardware conversion.
type TouchScreen interface {
	ReadTouch() (image.Point, bool, error)
}

// noTouch is the TouchScreen of a board without a touchscreen.
type noTouch struct{}

func (noTouch) ReadTouch() (image.Point, bool, error) {
	return image.Point{}, false, nil
}

// Loop is the cooperative device loop: one thread of control that
// polls the touchscreen, routes touches through the UI, and updates
// the periodic tasks. Nothing in a step may block for a meaningful
// duration, or the touch polling starves.
type Loop struct {
	logger *slog.Logger
	touch  TouchScreen
	ui     *touchui.Controller
	anim   *ledanim.Sparkle
	tasks  []*sched.Task
}

// NewLoop wires the sparkle animation and the touch UI into one loop.
// touch may be nil when no touchscreen is attached; display receives
// every UI mutation; frames go out through out.
func NewLoop(
	cfg *Config,
	logger *slog.Logger,
	touch TouchScreen,
	display touchui.Display,
	out led.FrameWriter,
) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	if touch == nil {
		touch = noTouch{}
	}
	if cfg.Brightness < 1 {
		out = led.Dimmer{W: out, Scale: cfg.Brightness}
	}

	anim := ledanim.NewSparkle(
		led.NewLEDs(cfg.NumLEDs), out,
		rand.New(rand.NewSource(time.Now().UnixNano())))

	task, err := sched.New(cfg.Rate, anim.Render)
	if err != nil {
		return nil, errors.Wrap(err, "invalid animation rate")
	}

	l := &Loop{
		logger: logger,
		touch:  touch,
		anim:   anim,
		tasks:  []*sched.Task{task},
	}

	l.ui = touchui.NewController(display, cfg.statusList(), func(status touchui.Status) {
		logger.Info("status selected", "status", status.Name)
		anim.SetColor(status.Color)
	})

	return l, nil
}

// UI returns the loop's UI controller.
func (l *Loop) UI() *touchui.Controller { return l.ui }

// Run shows the selector screen and then steps the loop until the
// context is canceled.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.ui.Reset(); err != nil {
		return errors.Wrap(err, "failed to show selector screen")
	}

	for ctx.Err() == nil {
		if err := l.Step(); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// Step runs a single loop iteration: one touch poll and one update
// pass over the periodic tasks.
func (l *Loop) Step() error {
	point, touched, err := l.touch.ReadTouch()
	if err != nil {
		// Touch reads fail transiently on noisy panels. Skip the
		// sample and keep animating.
		l.logger.Warn("touch read failed", "error", err)
	} else if touched {
		if _, err := l.ui.HandleTouch(point); err != nil {
			return errors.Wrap(err, "display update failed")
		}
	}

	for _, task := range l.tasks {
		if err := task.Update(); err != nil {
			return errors.Wrap(err, "task failed")
		}
	}
	return nil
}

// Package controller runs the brightness control loop: read the sensor, add
// the user offset, clamp, and push changed values to the displays.
package controller

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/oceania/autobright/internal/config"
	"github.com/oceania/autobright/internal/display"
	"github.com/oceania/autobright/internal/log"
	"github.com/oceania/autobright/internal/notify"
	"github.com/oceania/autobright/internal/offset"
	"github.com/oceania/autobright/internal/sensor"
)

// Tick is the outcome of one loop iteration.
type Tick struct {
	Sensor   int
	Adjusted int
	Offset   int
	Output   int
	Changed  bool
}

type Loop struct {
	sensor     sensor.Reader
	state      *offset.State
	dispatcher display.Dispatcher
	notifier   notify.Notifier

	targets          []display.Target
	interval         time.Duration
	divide           int
	minimum          int
	maximum          int
	notifyOnDispatch bool

	// previous is only touched by the goroutine running the loop.
	previous int
	last     atomic.Int64

	sleep func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config, s sensor.Reader, state *offset.State, d display.Dispatcher, n notify.Notifier) *Loop {
	targets := make([]display.Target, len(cfg.Displays))
	for i, disp := range cfg.Displays {
		targets[i] = display.Target{Cmd: disp.Cmd}
	}
	if n == nil {
		n = notify.Nop{}
	}

	return &Loop{
		sensor:           s,
		state:            state,
		dispatcher:       d,
		notifier:         n,
		targets:          targets,
		interval:         cfg.Interval,
		divide:           cfg.Divide,
		minimum:          cfg.Minimum,
		maximum:          cfg.Maximum,
		notifyOnDispatch: cfg.NotifyOnDispatch,
		sleep:            sleepContext,
	}
}

// Compute derives the output brightness. Division truncates toward zero, so
// a reading of -7 with divide 2 contributes -3.
func Compute(sensorValue, divide, offset, minimum, maximum int) int {
	raw := sensorValue/divide + offset
	return max(minimum, min(maximum, raw))
}

// Last returns the most recently dispatched output, 0 before the first
// dispatch.
func (l *Loop) Last() int {
	return int(l.last.Load())
}

// Step runs a single tick. The sleep happens on every tick, before any
// dispatch, whether or not the output changed. A sensor error is returned
// as is and nothing is dispatched.
func (l *Loop) Step(ctx context.Context) (Tick, error) {
	raw, err := l.sensor.Read()
	if err != nil {
		return Tick{}, err
	}

	tick := Tick{
		Sensor:   raw,
		Adjusted: raw / l.divide,
		Offset:   l.state.Read(),
	}
	tick.Output = Compute(raw, l.divide, tick.Offset, l.minimum, l.maximum)

	if err := l.sleep(ctx, l.interval); err != nil {
		return tick, err
	}

	if tick.Output == l.previous {
		return tick, nil
	}

	tick.Changed = true
	log.Debugf("Brightness %d -> %d (sensor=%d offset=%d)", l.previous, tick.Output, raw, tick.Offset)

	for _, err := range display.DispatchAll(l.dispatcher, l.targets, tick.Output) {
		log.Errorf("Display dispatch failed: %v", err)
	}
	if l.notifyOnDispatch {
		if err := l.notifier.Notify(tick.Offset); err != nil {
			log.Warnf("Notification failed: %v", err)
		}
	}

	l.previous = tick.Output
	l.last.Store(int64(tick.Output))
	return tick, nil
}

// Run ticks until ctx is cancelled or the sensor fails. Cancellation is a
// clean stop and returns nil; a sensor failure is returned to the caller,
// which is expected to terminate.
func (l *Loop) Run(ctx context.Context) error {
	log.Infof("Control loop started (interval=%s divide=%d range=[%d,%d] displays=%d)",
		l.interval, l.divide, l.minimum, l.maximum, len(l.targets))

	for {
		if _, err := l.Step(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info("Control loop stopped")
				return nil
			}
			return err
		}
	}
}

// sleepContext waits for d. It does not correct for time spent in the rest of
// the tick, so the period is interval plus tick cost.
func sleepContext(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// internal/tracker/tracker.go

package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"huddle/internal/domain/location"
)

// Trigger identifies what started a report attempt
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerOnDemand  Trigger = "on_demand"
)

// Outcome is the result of a single report attempt
type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeFailed           Outcome = "failed"
	OutcomePermissionDenied Outcome = "permission_denied"
)

// Result describes a finished report attempt
type Result struct {
	UserID   string
	Trigger  Trigger
	Outcome  Outcome
	Sample   *location.Sample
	Err      error
	Duration time.Duration
}

// Options contains configuration for the tracker
type Options struct {
	Interval        time.Duration
	PositionTimeout time.Duration
	SubmitTimeout   time.Duration
	DeviceInfo      string

	// OnResult receives every attempt result. It is called from the
	// attempt goroutine and must not block.
	OnResult func(Result)
}

// Tracker produces location reports for one user at a fixed cadence and
// on demand. The zero value is not usable; create one with NewTracker.
type Tracker struct {
	positioner Positioner
	reporter   Reporter
	options    Options

	mu   sync.Mutex
	loop *loop
}

type loop struct {
	userID   string
	cancel   context.CancelFunc
	inFlight atomic.Bool
	wg       sync.WaitGroup
}

// NewTracker creates a new tracker
func NewTracker(positioner Positioner, reporter Reporter, options Options) *Tracker {
	if options.Interval <= 0 {
		options.Interval = 5 * time.Minute
	}
	if options.PositionTimeout <= 0 {
		options.PositionTimeout = 30 * time.Second
	}
	if options.SubmitTimeout <= 0 {
		options.SubmitTimeout = 15 * time.Second
	}
	if options.OnResult == nil {
		options.OnResult = logResult
	}

	return &Tracker{
		positioner: positioner,
		reporter:   reporter,
		options:    options,
	}
}

// Start begins periodic reporting for userID. The first attempt runs
// immediately. Calling Start while a schedule is active does nothing.
func (t *Tracker) Start(userID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.loop != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &loop{userID: userID, cancel: cancel}
	t.loop = l

	l.wg.Add(1)
	go t.run(ctx, l)
}

// Stop cancels the schedule and waits for the loop and any in-flight
// attempt to return. It is safe to call when not tracking.
func (t *Tracker) Stop() {
	t.mu.Lock()
	l := t.loop
	t.loop = nil
	t.mu.Unlock()

	if l == nil {
		return
	}

	l.cancel()
	l.wg.Wait()
}

// Active reports whether a schedule is running
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loop != nil
}

// SendOnce performs a single report at high accuracy outside the schedule
// and returns the persisted sample. Unlike scheduled attempts, failures are
// returned to the caller.
func (t *Tracker) SendOnce(ctx context.Context, userID string) (*location.Sample, error) {
	started := time.Now()
	sample, err := t.attempt(ctx, userID, location.AccuracyHigh)
	t.options.OnResult(newResult(userID, TriggerOnDemand, sample, err, time.Since(started)))
	return sample, err
}

func (t *Tracker) run(ctx context.Context, l *loop) {
	defer l.wg.Done()

	t.tick(ctx, l)

	ticker := time.NewTicker(t.options.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx, l)
		}
	}
}

// tick launches one scheduled attempt unless the previous one is still
// running.
func (t *Tracker) tick(ctx context.Context, l *loop) {
	if !l.inFlight.CompareAndSwap(false, true) {
		t.options.OnResult(Result{UserID: l.userID, Trigger: TriggerScheduled, Outcome: OutcomeSkipped})
		return
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer l.inFlight.Store(false)

		started := time.Now()
		var (
			sample *location.Sample
			err    error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("report attempt panicked: %v", r)
				}
			}()
			sample, err = t.attempt(ctx, l.userID, location.AccuracyBalanced)
		}()

		t.options.OnResult(newResult(l.userID, TriggerScheduled, sample, err, time.Since(started)))
	}()
}

// attempt checks permission, acquires a fix and submits it. The position and
// submission calls are bounded by separate timeouts.
func (t *Tracker) attempt(ctx context.Context, userID string, tier location.AccuracyTier) (*location.Sample, error) {
	fix, err := t.position(ctx, tier)
	if err != nil {
		return nil, err
	}

	report := location.Report{
		TargetUserID: userID,
		Latitude:     fix.Latitude,
		Longitude:    fix.Longitude,
		Accuracy:     fix.Accuracy,
		SampledAt:    fix.CapturedAt,
		DeviceInfo:   t.options.DeviceInfo,
	}

	submitCtx, cancel := context.WithTimeout(ctx, t.options.SubmitTimeout)
	defer cancel()

	sample, err := t.reporter.Report(submitCtx, report)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", location.ErrNetwork, err)
	}

	return sample, nil
}

func (t *Tracker) position(ctx context.Context, tier location.AccuracyTier) (location.Fix, error) {
	positionCtx, cancel := context.WithTimeout(ctx, t.options.PositionTimeout)
	defer cancel()

	permission, err := t.positioner.Permission(positionCtx)
	if err != nil {
		return location.Fix{}, fmt.Errorf("%w: checking permission: %w", location.ErrPositionUnavailable, err)
	}
	if permission != PermissionGranted {
		return location.Fix{}, fmt.Errorf("%w: permission is %s", location.ErrPermissionDenied, permission)
	}

	fix, err := t.positioner.CurrentPosition(positionCtx, tier)
	if err != nil {
		return location.Fix{}, fmt.Errorf("%w: %w", location.ErrPositionUnavailable, err)
	}

	return fix, nil
}

func newResult(userID string, trigger Trigger, sample *location.Sample, err error, elapsed time.Duration) Result {
	result := Result{
		UserID:   userID,
		Trigger:  trigger,
		Outcome:  OutcomeSent,
		Sample:   sample,
		Err:      err,
		Duration: elapsed,
	}

	switch {
	case err == nil:
	case errors.Is(err, location.ErrPermissionDenied):
		result.Outcome = OutcomePermissionDenied
	default:
		result.Outcome = OutcomeFailed
	}

	return result
}

func logResult(r Result) {
	switch r.Outcome {
	case OutcomeSent:
		log.Printf("Location report sent for %s (%s, %v)", r.UserID, r.Trigger, r.Duration)
	case OutcomeSkipped:
		log.Printf("Skipping location report for %s: previous attempt still running", r.UserID)
	case OutcomePermissionDenied:
		log.Printf("Location permission not granted for %s, waiting for next tick", r.UserID)
	default:
		log.Printf("Error reporting location for %s (%s): %v", r.UserID, r.Trigger, r.Err)
	}
}

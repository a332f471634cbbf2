// Package capture runs the sampling loop: it takes position fixes from a
// Source, gates them by tracking window and adaptive cadence, persists
// accepted fixes and kicks off an upload for each one.
package capture

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"trackiq_agent/internal/config"
	"trackiq_agent/internal/models"
	"trackiq_agent/internal/store"
)

// Fix is a single position reading delivered by a Source.
type Fix struct {
	Latitude         float64
	Longitude        float64
	Accuracy         *float64
	Altitude         *float64
	AltitudeAccuracy *float64
	Heading          *float64
	Speed            *float64 // m/s
	Time             time.Time
	Background       bool
}

// Source is a capability that delivers continuous position updates with a
// minimum interval between deliveries. Platform and simulated sources both
// implement it.
type Source interface {
	Updates(ctx context.Context, minInterval time.Duration) (<-chan Fix, error)
}

// SampleSyncer uploads a single just-captured sample. The loop treats the
// call as fire-and-forget; a failed upload leaves the sample pending for the
// next orchestrator pass.
type SampleSyncer interface {
	SyncSample(ctx context.Context, id uint)
}

// Loop is the capture state machine. Fixes outside the tracking window are
// discarded; inside it, a fix is accepted only when enough time has elapsed
// since the last accepted capture for its motion state.
type Loop struct {
	store  *store.LocationStore
	syncer SampleSyncer

	windowStartHour    int
	windowEndHour      int
	movingInterval     time.Duration
	stationaryInterval time.Duration
	movingSpeedMPS     float64
	jitterMin          time.Duration
	jitterMax          time.Duration

	now   func() time.Time
	sleep func(time.Duration)

	mu          sync.Mutex
	lastCapture time.Time
	cancel      context.CancelFunc
}

func New(st *store.LocationStore, sy SampleSyncer, cfg config.Config) *Loop {
	return &Loop{
		store:              st,
		syncer:             sy,
		windowStartHour:    cfg.WindowStartHour,
		windowEndHour:      cfg.WindowEndHour,
		movingInterval:     cfg.MovingInterval,
		stationaryInterval: cfg.StationaryInterval,
		movingSpeedMPS:     cfg.MovingSpeedMPS,
		jitterMin:          cfg.JitterMin,
		jitterMax:          cfg.JitterMax,
		now:                time.Now,
		sleep:              time.Sleep,
	}
}

// Start begins consuming fixes from the source. Calling Start while running
// is a no-op.
func (l *Loop) Start(ctx context.Context, src Source) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	fixes, err := src.Updates(runCtx, l.movingInterval)
	if err != nil {
		l.Stop()
		return err
	}

	go func() {
		logrus.Info("Location capture loop started.")
		for {
			select {
			case <-runCtx.Done():
				logrus.Info("Location capture loop stopped.")
				return
			case fix, ok := <-fixes:
				if !ok {
					logrus.Info("Position source closed, capture loop exiting.")
					return
				}
				if _, err := l.Offer(runCtx, fix); err != nil {
					logrus.WithError(err).Error("Failed to record delivered fix.")
				}
			}
		}
	}()
	return nil
}

// Stop halts the loop. Pending samples are untouched; they upload after the
// next successful login.
func (l *Loop) Stop() {
	l.mu.Lock()
	cancel := l.cancel
	l.cancel = nil
	l.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Running reports whether the loop is consuming fixes.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancel != nil
}

// Offer applies the gates to a delivered fix. An accepted fix is persisted
// and then synced on its own; a discarded fix is never persisted. Returns
// whether the fix was accepted.
func (l *Loop) Offer(ctx context.Context, fix Fix) (bool, error) {
	if !l.withinTrackingWindow(l.now()) {
		return false, nil
	}

	required := l.requiredInterval(fix)

	l.mu.Lock()
	if !l.lastCapture.IsZero() && l.now().Sub(l.lastCapture) < required {
		l.mu.Unlock()
		return false, nil
	}
	previous := l.lastCapture
	l.lastCapture = l.now()
	l.mu.Unlock()

	sample := models.LocationSample{
		Latitude:         fix.Latitude,
		Longitude:        fix.Longitude,
		Accuracy:         fix.Accuracy,
		Altitude:         fix.Altitude,
		AltitudeAccuracy: fix.AltitudeAccuracy,
		Heading:          fix.Heading,
		Speed:            fix.Speed,
		CapturedAt:       fix.Time.UnixMilli(),
		IsBackground:     fix.Background,
	}

	id, err := l.store.Append(&sample)
	if err != nil {
		// The fix is gone. Roll the gate back so the next delivery is not
		// suppressed by a capture that never happened.
		l.mu.Lock()
		l.lastCapture = previous
		l.mu.Unlock()
		return false, err
	}

	logrus.WithFields(logrus.Fields{
		"id":         id,
		"latitude":   fix.Latitude,
		"longitude":  fix.Longitude,
		"background": fix.Background,
	}).Info("Captured location.")

	go func() {
		if fix.Background {
			// Spread load so a fleet of devices does not hit the backend at
			// the same instant.
			l.sleep(l.jitter())
		}
		l.syncer.SyncSample(ctx, id)
	}()

	return true, nil
}

func (l *Loop) withinTrackingWindow(t time.Time) bool {
	hour := t.Local().Hour()
	return hour >= l.windowStartHour && hour < l.windowEndHour
}

func (l *Loop) requiredInterval(fix Fix) time.Duration {
	speed := 0.0
	if fix.Speed != nil {
		speed = *fix.Speed
	}
	if speed >= l.movingSpeedMPS {
		return l.movingInterval
	}
	return l.stationaryInterval
}

func (l *Loop) jitter() time.Duration {
	if l.jitterMax <= l.jitterMin {
		return l.jitterMin
	}
	return l.jitterMin + time.Duration(rand.Int63n(int64(l.jitterMax-l.jitterMin)))
}

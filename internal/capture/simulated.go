package capture

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// SimulatedSource emits a random walk around a starting coordinate. It stands
// in for a real GPS receiver during development and in end-to-end runs
// against the devserver.
type SimulatedSource struct {
	Latitude  float64
	Longitude float64
	// StepMeters bounds the displacement per emitted fix.
	StepMeters float64
	// SpeedMPS is reported on every fix; drives the moving/stationary gate.
	SpeedMPS float64
	// Interval between emitted fixes. The loop's own gates still apply, so
	// a short interval here just exercises the discard paths.
	Interval time.Duration
}

const metersPerDegree = 111_320.0

// Updates emits fixes until the context is cancelled.
func (s *SimulatedSource) Updates(ctx context.Context, minInterval time.Duration) (<-chan Fix, error) {
	interval := s.Interval
	if interval <= 0 {
		interval = minInterval
	}
	step := s.StepMeters
	if step <= 0 {
		step = 25
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	lat, lon := s.Latitude, s.Longitude

	out := make(chan Fix)
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				angle := rng.Float64() * 2 * math.Pi
				magnitude := rng.Float64() * step
				lat += magnitude * math.Sin(angle) / metersPerDegree
				lon += magnitude * math.Cos(angle) / (metersPerDegree * math.Cos(lat*math.Pi/180))

				speed := s.SpeedMPS
				accuracy := 5 + rng.Float64()*10
				fix := Fix{
					Latitude:  lat,
					Longitude: lon,
					Accuracy:  &accuracy,
					Speed:     &speed,
					Time:      time.Now(),
				}
				select {
				case out <- fix:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

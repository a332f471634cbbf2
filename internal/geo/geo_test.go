package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	if d := Distance(12.9716, 77.5946, 12.9716, 77.5946); d != 0 {
		t.Fatalf("expected zero distance, got %f", d)
	}
}

func TestDistanceKnownPairs(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64 // meters
		tolerance              float64
	}{
		{"one degree of longitude at the equator", 0, 0, 0, 1, 111195, 200},
		{"one degree of latitude", 0, 0, 1, 0, 111195, 200},
		{"nairobi cbd to westlands", -1.2864, 36.8172, -1.2630, 36.8063, 2880, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Distance(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > tc.tolerance {
				t.Fatalf("expected ~%fm, got %fm", tc.want, got)
			}
		})
	}
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Distance(-1.2864, 36.8172, -1.2630, 36.8063)
	b := Distance(-1.2630, 36.8063, -1.2864, 36.8172)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestBearingCardinalDirections(t *testing.T) {
	cases := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
	}{
		{"due north", 0, 0, 1, 0, 0},
		{"due east", 0, 0, 0, 1, 90},
		{"due south", 1, 0, 0, 0, 180},
		{"due west", 0, 1, 0, 0, 270},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Bearing(tc.lat1, tc.lon1, tc.lat2, tc.lon2)
			if math.Abs(got-tc.want) > 0.01 {
				t.Fatalf("expected bearing %f, got %f", tc.want, got)
			}
		})
	}
}

func TestWithinRadius(t *testing.T) {
	// Roughly 15.5m east of the target at this latitude.
	target := [2]float64{12.9716, 77.5946}
	near := [2]float64{12.9716, 77.59474}
	far := [2]float64{12.9716, 77.6}

	if !WithinRadius(target[0], target[1], near[0], near[1], DefaultPropertyRadiusMeters) {
		t.Fatal("point ~15m away should be inside the 50m geofence")
	}
	if WithinRadius(target[0], target[1], far[0], far[1], DefaultPropertyRadiusMeters) {
		t.Fatal("point ~580m away should be outside the 50m geofence")
	}
}

// Package geo provides the great-circle and angular math used across the
// fusion and detection pipeline.
package geo

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	earthRadiusM  = 6371000   // meters
	earthRadiusNM = 3440.065  // nautical miles
	msToKnots     = 1.94384   // m/s -> knots
)

// HaversineMeters returns the great-circle distance between two
// latitude/longitude points in meters.
func HaversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2) * earthRadiusM
}

// HaversineNM returns the great-circle distance in nautical miles.
func HaversineNM(lat1, lon1, lat2, lon2 float64) float64 {
	return haversine(lat1, lon1, lat2, lon2) * earthRadiusNM
}

func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BearingDegrees returns the initial bearing from point 1 to point 2,
// normalized to [0, 360).
func BearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLambda) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLambda)
	return NormalizeDegrees(math.Atan2(y, x) * 180 / math.Pi)
}

// CircularMeanDegrees computes the weighted circular mean of angles given in
// degrees, avoiding the 359/1 wraparound error of arithmetic averaging.
// weights may be nil for an unweighted mean. The result is in [0, 360).
func CircularMeanDegrees(angles, weights []float64) float64 {
	rad := make([]float64, len(angles))
	for i, a := range angles {
		rad[i] = a * math.Pi / 180
	}
	return NormalizeDegrees(stat.CircularMean(rad, weights) * 180 / math.Pi)
}

// NormalizeDegrees wraps an angle to [0, 360). Values that round up to
// exactly 360 collapse to 0 so the half-open interval holds.
func NormalizeDegrees(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	if m >= 360 {
		m = 0
	}
	return m
}

// SpeedKnots converts a distance in meters covered over elapsed seconds into
// an implied speed in knots. Returns 0 for non-positive elapsed time.
func SpeedKnots(distanceM, elapsedSec float64) float64 {
	if elapsedSec <= 0 {
		return 0
	}
	return distanceM / elapsedSec * msToKnots
}

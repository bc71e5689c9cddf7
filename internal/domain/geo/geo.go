// Package geo computes great-circle distances between coordinates.
package geo

import "math"

// EarthRadiusKm is the mean Earth radius used by Haversine.
const EarthRadiusKm = 6371.0

const degToRad = math.Pi / 180

// Point is a geographic coordinate in degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Haversine returns the surface distance between a and b in kilometers.
func Haversine(a, b Point) float64 {
	return HaversineWithRadius(a, b, EarthRadiusKm)
}

// HaversineWithRadius is Haversine on a sphere of the given radius.
// Coordinates are not validated; NaN propagates to the result.
func HaversineWithRadius(a, b Point, radiusKm float64) float64 {
	phi1 := a.Lat * degToRad
	phi2 := b.Lat * degToRad
	dPhi := (b.Lat - a.Lat) * degToRad
	dLambda := (b.Lon - a.Lon) * degToRad

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	h := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda

	// Rounding can push h a hair outside [0, 1] for near or antipodal points.
	h = math.Max(0, math.Min(1, h))

	return 2 * radiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistancesFrom returns the distance from src to every point in pts, in order.
func DistancesFrom(src Point, pts []Point) []float64 {
	return DistancesFromWithRadius(src, pts, EarthRadiusKm)
}

// DistancesFromWithRadius is DistancesFrom on a sphere of the given radius.
func DistancesFromWithRadius(src Point, pts []Point, radiusKm float64) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = HaversineWithRadius(src, p, radiusKm)
	}
	return out
}

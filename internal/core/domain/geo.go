package domain

import "math"

// EarthRadiusMiles is the mean Earth radius used for great-circle distances.
const EarthRadiusMiles = 3959.0

// GeoPoint is a WGS 84 coordinate in degrees. It is an immutable value.
type GeoPoint struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// Valid reports whether the point is finite and within latitude/longitude range.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) {
		return false
	}
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180
}

// DistanceTo returns the great-circle distance to q in miles.
func (p GeoPoint) DistanceTo(q GeoPoint) float64 {
	return Distance(p, q)
}

// Distance returns the haversine great-circle distance between a and b in miles.
// Identical points short-circuit to 0.
func Distance(a, b GeoPoint) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)
	h := sinLat*sinLat + math.Cos(lat1)*math.Cos(lat2)*sinLon*sinLon
	// Rounding can push h just outside [0, 1] for near-antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * EarthRadiusMiles * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ProximityResult annotates a listing with its distance from a search center.
// Derived on every search; never stored.
type ProximityResult struct {
	Listing       Listing `json:"listing"`
	DistanceMiles float64 `json:"distance_miles"`
}

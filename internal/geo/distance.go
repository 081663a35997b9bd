package geo

import "math"

// EarthRadiusMeters is the mean Earth radius used for Haversine and projection.
const EarthRadiusMeters = 6371008.8

const degToRad = math.Pi / 180

// HaversineMeters calculates the great-circle distance between two points
// on Earth in metres using the Haversine formula.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * degToRad
	dLng := (lng2 - lng1) * degToRad
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*degToRad)*math.Cos(lat2*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

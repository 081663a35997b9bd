package geo

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"

	"fleetHQ/models"
)

// SurveyMetrics are the derived measurements of a survey polygon.
type SurveyMetrics struct {
	AreaM2      float64
	PerimeterM  float64
	CentroidLat float64
	CentroidLng float64
}

// MeasureSurveyArea projects the closed ring onto a local equirectangular
// plane and measures it. The ring must already be closed.
func MeasureSurveyArea(ring []models.Coordinate) (SurveyMetrics, error) {
	if len(ring) < 4 {
		return SurveyMetrics{}, fmt.Errorf("survey ring has %d vertices, need at least 4 including closure", len(ring))
	}
	var m SurveyMetrics
	open := ring[:len(ring)-1]
	for _, c := range open {
		m.CentroidLat += c.Latitude
		m.CentroidLng += c.Longitude
	}
	m.CentroidLat /= float64(len(open))
	m.CentroidLng /= float64(len(open))

	poly, err := projectedPolygon(ring, m.CentroidLat)
	if err != nil {
		return SurveyMetrics{}, err
	}
	m.AreaM2 = poly.Area()
	for i := 1; i < len(ring); i++ {
		a, b := ring[i-1], ring[i]
		m.PerimeterM += HaversineMeters(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
	}
	return m, nil
}

// projectedPolygon builds the polygon in metres relative to refLat.
func projectedPolygon(ring []models.Coordinate, refLat float64) (geom.Polygon, error) {
	k := math.Cos(refLat * degToRad)
	xy := make([]float64, 0, 2*len(ring))
	for _, c := range ring {
		xy = append(xy,
			EarthRadiusMeters*c.Longitude*degToRad*k,
			EarthRadiusMeters*c.Latitude*degToRad,
		)
	}
	shell, err := geom.NewLineString(geom.NewSequence(xy, geom.DimXY))
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("survey ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{shell})
	if err != nil {
		return geom.Polygon{}, fmt.Errorf("survey polygon: %w", err)
	}
	if poly.IsEmpty() {
		return geom.Polygon{}, fmt.Errorf("survey area is empty")
	}
	return poly, nil
}

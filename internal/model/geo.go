// Package model defines the plain value records shared across the expansion
// analysis pipeline. The scoring engine owns none of them; they are supplied
// by callers per invocation.
package model

// GeoPoint is a WGS84 coordinate in degrees.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BBox is a geographic bounding box.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b BBox) Contains(p GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

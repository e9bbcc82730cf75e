// Package grid generates candidate analysis cells over a geographic area and
// loads service-area boundaries from shapefiles.
package grid

import (
	"github.com/rotisserie/eris"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// DegreesPerKM is an approximate conversion factor for latitude degrees to
// kilometers. At mid-latitudes, 1 degree of latitude is approximately 111 km.
const DegreesPerKM = 1.0 / 111.0

// Cells generates a square grid of cell centers covering the bounding box at
// the given spacing in kilometers. Centers are offset half a cell from the
// southwest corner and ordered south to north, west to east.
func Cells(bbox model.BBox, cellKM float64) ([]model.GeoPoint, error) {
	if cellKM <= 0 {
		return nil, eris.New("grid: cell_km must be positive")
	}
	if bbox.MaxLat < bbox.MinLat || bbox.MaxLng < bbox.MinLng {
		return nil, eris.New("grid: bounding box is inverted")
	}

	cellDeg := cellKM * DegreesPerKM

	var centers []model.GeoPoint
	for lat := bbox.MinLat + cellDeg/2; lat <= bbox.MaxLat; lat += cellDeg {
		for lng := bbox.MinLng + cellDeg/2; lng <= bbox.MaxLng; lng += cellDeg {
			centers = append(centers, model.GeoPoint{Lat: lat, Lng: lng})
		}
	}
	return centers, nil
}

// CellsWithin generates cell centers over the boundary's bounding box and
// keeps only those inside the boundary.
func CellsWithin(b *Boundary, cellKM float64) ([]model.GeoPoint, error) {
	if b == nil {
		return nil, eris.New("grid: boundary is required")
	}
	all, err := Cells(b.BBox(), cellKM)
	if err != nil {
		return nil, err
	}
	kept := make([]model.GeoPoint, 0, len(all))
	for _, p := range all {
		if b.ContainsPoint(p) {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

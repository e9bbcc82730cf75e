package grid

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"go.uber.org/zap"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// Boundary is a service-area polygon loaded from a shapefile.
type Boundary struct {
	mp *geom.MultiPolygon
}

// NewBoundary wraps an existing multipolygon.
func NewBoundary(mp *geom.MultiPolygon) *Boundary {
	return &Boundary{mp: mp}
}

// BoundaryFromEWKB decodes a stored boundary.
func BoundaryFromEWKB(data []byte) (*Boundary, error) {
	g, err := ewkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "grid: decode boundary EWKB")
	}
	mp, ok := g.(*geom.MultiPolygon)
	if !ok {
		return nil, eris.Errorf("grid: boundary is %T, expected multipolygon", g)
	}
	return &Boundary{mp: mp}, nil
}

// LoadBoundary reads the first polygon shape from a shapefile. Multiple
// shapes are merged into one multipolygon.
func LoadBoundary(shpPath string) (*Boundary, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "grid: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	var skipped int

	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok || poly == nil {
			skipped++
			continue
		}
		if err := appendPolygonParts(mp, poly); err != nil {
			skipped++
			continue
		}
	}

	if skipped > 0 {
		zap.L().Debug("grid: skipped shapefile records",
			zap.String("shapefile", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	if mp.NumPolygons() == 0 {
		return nil, eris.Errorf("grid: no polygon shapes in %s", shpPath)
	}
	return &Boundary{mp: mp}, nil
}

// appendPolygonParts converts shapefile polygon parts to rings and pushes
// them onto the multipolygon. Each part becomes its own single-ring polygon.
func appendPolygonParts(mp *geom.MultiPolygon, p *shp.Polygon) error {
	if p.NumParts == 0 || len(p.Points) == 0 {
		return eris.New("grid: empty polygon shape")
	}

	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		ring := geom.NewLinearRingFlat(geom.XY, flat)
		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(ring); err != nil {
			return eris.Wrap(err, "grid: malformed polygon ring")
		}
		if err := mp.Push(poly); err != nil {
			return eris.Wrap(err, "grid: malformed polygon part")
		}
	}
	return nil
}

// BBox returns the boundary's bounding box.
func (b *Boundary) BBox() model.BBox {
	bounds := b.mp.Bounds()
	return model.BBox{
		MinLat: bounds.Min(1),
		MinLng: bounds.Min(0),
		MaxLat: bounds.Max(1),
		MaxLng: bounds.Max(0),
	}
}

// ContainsPoint reports whether the point lies inside the boundary, using a
// ray cast against each polygon's exterior ring.
func (b *Boundary) ContainsPoint(p model.GeoPoint) bool {
	for i := 0; i < b.mp.NumPolygons(); i++ {
		poly := b.mp.Polygon(i)
		if poly.NumLinearRings() == 0 {
			continue
		}
		if ringContains(poly.LinearRing(0), p) {
			inHole := false
			for r := 1; r < poly.NumLinearRings(); r++ {
				if ringContains(poly.LinearRing(r), p) {
					inHole = true
					break
				}
			}
			if !inHole {
				return true
			}
		}
	}
	return false
}

func ringContains(ring *geom.LinearRing, p model.GeoPoint) bool {
	coords := ring.Coords()
	n := len(coords)
	if n < 3 {
		return false
	}

	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := coords[i][0], coords[i][1]
		xj, yj := coords[j][0], coords[j][1]
		if (yi > p.Lat) != (yj > p.Lat) &&
			p.Lng < (xj-xi)*(p.Lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// EWKB returns the boundary encoded as EWKB with SRID 4326, suitable for
// loading into a geometry column.
func (b *Boundary) EWKB() ([]byte, error) {
	data, err := ewkb.Marshal(b.mp, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "grid: encode boundary EWKB")
	}
	return data, nil
}

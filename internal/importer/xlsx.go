// Package importer loads distributor and warehouse master data from XLSX
// workbooks exported by the sales back office.
package importer

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

// XLSXOptions configures the workbook parser.
type XLSXOptions struct {
	SheetIndex int    // default 0
	SheetName  string // if set, overrides SheetIndex
	SkipRows   int    // number of header rows to skip, default 1
}

var titleCaser = cases.Title(language.Indonesian)

// NormalizeName trims, collapses whitespace, and title-cases a master-data
// name. Back-office exports mix ALL CAPS and lowercase freely.
func NormalizeName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return titleCaser.String(strings.Join(fields, " "))
}

// ReadDistributors parses a distributor workbook. Expected columns:
// id, name, lat, lng, service_radius_km (optional).
func ReadDistributors(path string, opts XLSXOptions) ([]model.Distributor, error) {
	rows, err := readRows(path, opts)
	if err != nil {
		return nil, err
	}

	var (
		out     []model.Distributor
		skipped int
	)
	for i, cells := range rows {
		if len(cells) < 4 {
			skipped++
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(cells[0]), 10, 64)
		if err != nil {
			skipped++
			continue
		}
		lat, latErr := parseFloat(cells[2])
		lng, lngErr := parseFloat(cells[3])
		if latErr != nil || lngErr != nil {
			skipped++
			continue
		}

		d := model.Distributor{
			ID:       id,
			Name:     NormalizeName(cells[1]),
			Location: model.GeoPoint{Lat: lat, Lng: lng},
		}
		if len(cells) > 4 && strings.TrimSpace(cells[4]) != "" {
			radius, err := parseFloat(cells[4])
			if err != nil {
				return nil, eris.Errorf("importer: row %d: bad service radius %q", i+opts.skipRows()+1, cells[4])
			}
			d.ServiceRadiusKm = radius
		}
		out = append(out, model.NormalizeDistributor(d))
	}

	if skipped > 0 {
		zap.L().Warn("skipped malformed distributor rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

// ReadWarehouses parses a warehouse workbook. Expected columns:
// name, lat, lng.
func ReadWarehouses(path string, opts XLSXOptions) ([]model.Warehouse, error) {
	rows, err := readRows(path, opts)
	if err != nil {
		return nil, err
	}

	var (
		out     []model.Warehouse
		skipped int
	)
	for _, cells := range rows {
		if len(cells) < 3 {
			skipped++
			continue
		}
		name := NormalizeName(cells[0])
		lat, latErr := parseFloat(cells[1])
		lng, lngErr := parseFloat(cells[2])
		if name == "" || latErr != nil || lngErr != nil {
			skipped++
			continue
		}
		out = append(out, model.Warehouse{
			Name:     name,
			Location: model.GeoPoint{Lat: lat, Lng: lng},
		})
	}

	if skipped > 0 {
		zap.L().Warn("skipped malformed warehouse rows",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return out, nil
}

func (o XLSXOptions) skipRows() int {
	if o.SkipRows == 0 {
		return 1
	}
	return o.SkipRows
}

func readRows(path string, opts XLSXOptions) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "importer: open workbook %s", path)
	}

	sheet, err := getSheet(f, opts)
	if err != nil {
		return nil, err
	}

	skip := opts.skipRows()
	var rows [][]string
	for i, row := range sheet.Rows {
		if i < skip {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func getSheet(f *xlsx.File, opts XLSXOptions) (*xlsx.Sheet, error) {
	if opts.SheetName != "" {
		sheet, ok := f.Sheet[opts.SheetName]
		if !ok {
			return nil, eris.Errorf("importer: sheet %q not found", opts.SheetName)
		}
		return sheet, nil
	}
	if opts.SheetIndex >= len(f.Sheets) {
		return nil, eris.Errorf("importer: sheet index %d out of range (workbook has %d sheets)",
			opts.SheetIndex, len(f.Sheets))
	}
	return f.Sheets[opts.SheetIndex], nil
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

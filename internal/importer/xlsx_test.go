package importer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/gresik-digital/expansion-cli/internal/model"
)

func writeWorkbook(t *testing.T, name string, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.Save(path))
	return path
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Depot Bandung Timur", NormalizeName("  DEPOT   BANDUNG timur "))
	assert.Equal(t, "Gudang Gedebage", NormalizeName("gudang gedebage"))
	assert.Equal(t, "", NormalizeName("   "))
}

func TestReadDistributors(t *testing.T) {
	path := writeWorkbook(t, "distributors.xlsx", [][]string{
		{"id", "name", "lat", "lng", "service_radius_km"},
		{"1", "DEPOT BANDUNG", "-6.9175", "107.6191", "12"},
		{"2", "depot cimahi", "-6.8723", "107.5425", ""},
		{"bad-id", "Depot Broken", "-6.9", "107.6", ""},
	})

	got, err := ReadDistributors(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "Depot Bandung", got[0].Name)
	assert.InDelta(t, 12.0, got[0].ServiceRadiusKm, 1e-9)

	// Missing radius falls back to the default.
	assert.Equal(t, "Depot Cimahi", got[1].Name)
	assert.InDelta(t, model.DefaultServiceRadiusKm, got[1].ServiceRadiusKm, 1e-9)
}

func TestReadDistributors_BadRadius(t *testing.T) {
	path := writeWorkbook(t, "distributors.xlsx", [][]string{
		{"id", "name", "lat", "lng", "service_radius_km"},
		{"1", "Depot Bandung", "-6.9175", "107.6191", "twelve"},
	})

	_, err := ReadDistributors(path, XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad service radius")
}

func TestReadWarehouses(t *testing.T) {
	path := writeWorkbook(t, "warehouses.xlsx", [][]string{
		{"name", "lat", "lng"},
		{"GUDANG GEDEBAGE", "-6.95", "107.7"},
		{"", "-6.9", "107.6"},
		{"Gudang Padalarang", "not-a-number", "107.48"},
	})

	got, err := ReadWarehouses(path, XLSXOptions{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gudang Gedebage", got[0].Name)
	assert.InDelta(t, -6.95, got[0].Location.Lat, 1e-9)
}

func TestReadRows_SheetSelection(t *testing.T) {
	f := xlsx.NewFile()
	_, err := f.AddSheet("First")
	require.NoError(t, err)
	second, err := f.AddSheet("Depots")
	require.NoError(t, err)
	header := second.AddRow()
	header.AddCell().SetString("id")
	row := second.AddRow()
	for _, v := range []string{"7", "Depot Garut", "-7.2", "107.9"} {
		row.AddCell().SetString(v)
	}
	path := filepath.Join(t.TempDir(), "multi.xlsx")
	require.NoError(t, f.Save(path))

	got, err := ReadDistributors(path, XLSXOptions{SheetName: "Depots"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(7), got[0].ID)

	_, err = ReadDistributors(path, XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadDistributors(path, XLSXOptions{SheetIndex: 9})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

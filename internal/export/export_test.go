package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jszwec/csvutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

func defaultDataset(t *testing.T) *fixture.Dataset {
	t.Helper()
	ds, err := fixture.Default()
	require.NoError(t, err)
	return ds
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats("")
	require.NoError(t, err)
	assert.Equal(t, AllFormats(), got)

	got, err = ParseFormats(" CSV, yaml ,csv")
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatCSV, FormatYAML}, got)

	_, err = ParseFormats("csv,pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pdf"`)
}

func TestWrite_AllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Write(context.Background(), defaultDataset(t), dir, AllFormats())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, ZonesCSV),
		filepath.Join(dir, StatesCSV),
		filepath.Join(dir, LGAsCSV),
		filepath.Join(dir, WorkbookXLS),
		filepath.Join(dir, DatasetYAML),
		filepath.Join(dir, FixtureJSON),
	}, paths)
	for _, p := range paths {
		assert.FileExists(t, p)
	}
}

func TestWrite_CSV(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(context.Background(), defaultDataset(t), dir, []Format{FormatCSV})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, StatesCSV))
	require.NoError(t, err)
	var states []model.State
	require.NoError(t, csvutil.Unmarshal(data, &states))
	require.Len(t, states, 37)
	assert.Equal(t, model.State{ID: 19, Name: "Kano", Capital: "Kano", ZoneID: 3, Zone: "North West"}, states[18])

	data, err = os.ReadFile(filepath.Join(dir, LGAsCSV))
	require.NoError(t, err)
	var lgas []model.LocalGovernment
	require.NoError(t, csvutil.Unmarshal(data, &lgas))
	assert.Len(t, lgas, 774)
	assert.Equal(t, "Aba North", lgas[0].Name)
	assert.Equal(t, "Abia", lgas[0].State)
}

func TestWrite_XLSX(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(context.Background(), defaultDataset(t), dir, []Format{FormatXLSX})
	require.NoError(t, err)

	f, err := xlsx.OpenFile(filepath.Join(dir, WorkbookXLS))
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)

	zones := f.Sheet[SheetZones]
	require.NotNil(t, zones)
	assert.Len(t, zones.Rows, 7)
	assert.Equal(t, "name", zones.Rows[0].Cells[1].String())
	assert.Equal(t, "North Central", zones.Rows[1].Cells[1].String())

	states := f.Sheet[SheetStates]
	require.NotNil(t, states)
	assert.Len(t, states.Rows, 38)
	row := states.Rows[30]
	assert.Equal(t, "Oyo", row.Cells[1].String())
	assert.Equal(t, "Ibadan", row.Cells[2].String())
	assert.Equal(t, "South West", row.Cells[3].String())

	assert.Len(t, f.Sheet[SheetLGAs].Rows, 775)
}

func TestWrite_YAML(t *testing.T) {
	dir := t.TempDir()
	_, err := Write(context.Background(), defaultDataset(t), dir, []Format{FormatYAML})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, DatasetYAML))
	require.NoError(t, err)
	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Len(t, doc.Zones, 6)
	assert.Len(t, doc.States, 37)
	assert.Len(t, doc.LGAs, 774)
	assert.Equal(t, "Federal Capital Territory", doc.States[36].Name)
}

func TestWrite_JSONIsLoadableFixture(t *testing.T) {
	dir := t.TempDir()
	ds := defaultDataset(t)
	_, err := Write(context.Background(), ds, dir, []Format{FormatJSON})
	require.NoError(t, err)

	back, err := fixture.LoadFile(filepath.Join(dir, FixtureJSON))
	require.NoError(t, err)
	if diff := cmp.Diff(ds, back); diff != "" {
		t.Errorf("fixture round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWrite_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Write(ctx, defaultDataset(t), t.TempDir(), AllFormats())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWrite_UnknownFormat(t *testing.T) {
	_, err := Write(context.Background(), defaultDataset(t), t.TempDir(), []Format{"pdf"})
	require.Error(t, err)
}

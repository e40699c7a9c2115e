package export

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/nigerian-states/internal/fixture"
	"github.com/sells-group/nigerian-states/internal/model"
)

// Output file names.
const (
	ZonesCSV    = "geopolitical_zones.csv"
	StatesCSV   = "states.csv"
	LGAsCSV     = "local_governments.csv"
	WorkbookXLS = "nigerian_states.xlsx"
	DatasetYAML = "nigerian_states.yaml"
	FixtureJSON = "fixtures.json"
)

// Sheet names inside the workbook.
const (
	SheetZones  = "Zones"
	SheetStates = "States"
	SheetLGAs   = "LGAs"
)

// Document is the YAML layout.
type Document struct {
	Zones  []model.GeoPoliticalZone `yaml:"zones"`
	States []model.State            `yaml:"states"`
	LGAs   []model.LocalGovernment  `yaml:"lgas"`
}

func writeCSV(ds *fixture.Dataset, dir string) ([]string, error) {
	files := []struct {
		name string
		rows any
	}{
		{ZonesCSV, ds.Zones},
		{StatesCSV, ds.States},
		{LGAsCSV, ds.LGAs},
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		data, err := csvutil.Marshal(f.rows)
		if err != nil {
			return nil, eris.Wrapf(err, "csv: marshal %s", f.name)
		}
		path := fileName(dir, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, eris.Wrapf(err, "csv: write %s", path)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeXLSX(ds *fixture.Dataset, dir string) ([]string, error) {
	file := xlsx.NewFile()

	zones := make([][]string, len(ds.Zones))
	for i, z := range ds.Zones {
		zones[i] = []string{strconv.Itoa(z.ID), z.Name}
	}
	states := make([][]string, len(ds.States))
	for i, s := range ds.States {
		states[i] = []string{strconv.Itoa(s.ID), s.Name, s.Capital, s.Zone}
	}
	lgas := make([][]string, len(ds.LGAs))
	for i, l := range ds.LGAs {
		lgas[i] = []string{strconv.Itoa(l.ID), l.Name, l.State}
	}

	sheets := []struct {
		name   string
		header []string
		rows   [][]string
	}{
		{SheetZones, []string{"id", "name"}, zones},
		{SheetStates, []string{"id", "name", "capital", "zone"}, states},
		{SheetLGAs, []string{"id", "name", "state"}, lgas},
	}
	for _, s := range sheets {
		sheet, err := file.AddSheet(s.name)
		if err != nil {
			return nil, eris.Wrapf(err, "xlsx: add sheet %s", s.name)
		}
		addRow(sheet, s.header)
		for _, r := range s.rows {
			addRow(sheet, r)
		}
	}

	path := fileName(dir, WorkbookXLS)
	if err := file.Save(path); err != nil {
		return nil, eris.Wrapf(err, "xlsx: save %s", path)
	}
	return []string{path}, nil
}

func addRow(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func writeYAML(ds *fixture.Dataset, dir string) ([]string, error) {
	data, err := yaml.Marshal(Document{Zones: ds.Zones, States: ds.States, LGAs: ds.LGAs})
	if err != nil {
		return nil, eris.Wrap(err, "yaml: marshal")
	}
	path := fileName(dir, DatasetYAML)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, eris.Wrapf(err, "yaml: write %s", path)
	}
	return []string{path}, nil
}

// writeJSON writes the dataset back out in fixture record format, so the file
// can be fed to `load --fixture`.
func writeJSON(ds *fixture.Dataset, dir string) ([]string, error) {
	records, err := ds.Records()
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "json: marshal")
	}
	path := fileName(dir, FixtureJSON)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return nil, eris.Wrapf(err, "json: write %s", path)
	}
	return []string{path}, nil
}

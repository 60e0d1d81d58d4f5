package puzzlefile

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// csvHeader is accepted, but not required, as the first record
var csvHeader = []string{"name", "row", "col", "length", "orientation"}

// decodeCSV reads one vehicle per record: name,row,col,length,H|V.
// The board is always the default size.
func decodeCSV(data []byte) (*engine.PuzzleConfig, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comment = '#'
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = len(csvHeader)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && strings.EqualFold(strings.TrimSpace(records[0][0]), csvHeader[0]) {
		records = records[1:]
	}

	config := &engine.PuzzleConfig{}
	for i, rec := range records {
		vc, err := parseCSVRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i+1, err)
		}
		config.Vehicles = append(config.Vehicles, vc)
	}
	return config, nil
}

func parseCSVRecord(rec []string) (engine.VehicleConfig, error) {
	ints := make([]int, 3)
	for i, field := range rec[1:4] {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return engine.VehicleConfig{}, fmt.Errorf("%s: %w", csvHeader[i+1], err)
		}
		ints[i] = n
	}
	return engine.VehicleConfig{
		Name:        strings.TrimSpace(rec[0]),
		Row:         ints[0],
		Col:         ints[1],
		Length:      ints[2],
		Orientation: strings.TrimSpace(rec[4]),
	}, nil
}

func encodeCSV(config *engine.PuzzleConfig) ([]byte, error) {
	vehicles, err := placement(config)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, vc := range vehicles {
		rec := []string{vc.Name, strconv.Itoa(vc.Row), strconv.Itoa(vc.Col), strconv.Itoa(vc.Length), vc.Orientation}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// placement returns config's vehicles as records, expanding a layout if needed
func placement(config *engine.PuzzleConfig) ([]engine.VehicleConfig, error) {
	if len(config.Layout) == 0 {
		return config.Vehicles, nil
	}
	_, vehicles, err := engine.ParseLayout(config.Layout)
	if err != nil {
		return nil, err
	}
	out := make([]engine.VehicleConfig, len(vehicles))
	for i, v := range vehicles {
		out[i] = engine.VehicleConfigFor(v)
	}
	return out, nil
}

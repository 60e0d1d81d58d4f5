package puzzlefile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// Every format below describes the same board: r on row 2 with a vertical
// blocker at column 4.
var wantVehicles = []engine.Vehicle{
	{Name: "b", Row: 2, Col: 4, Length: 2, Orientation: engine.Vertical},
	{Name: "r", Row: 2, Col: 2, Length: 2, Orientation: engine.Horizontal},
}

func TestDecode_AllFormats(t *testing.T) {
	tests := []struct {
		filename string
		data     string
		wantName string
	}{
		{
			filename: "blocker.json",
			data: `{"name": "json blocker", "vehicles": [
				{"name": "r", "row": 2, "col": 2, "length": 2, "orientation": "H"},
				{"name": "b", "row": 2, "col": 4, "length": 2, "orientation": "V"}]}`,
			wantName: "json blocker",
		},
		{
			filename: "blocker.yaml",
			data: `name: yaml blocker
vehicles:
  - {name: r, row: 2, col: 2, length: 2, orientation: H}
  - {name: b, row: 2, col: 4, length: 2, orientation: vertical}
`,
			wantName: "yaml blocker",
		},
		{
			filename: "blocker.csv",
			data:     "name,row,col,length,orientation\nr,2,2,2,H\n# the blocker\nb, 2, 4, 2, V\n",
			wantName: "blocker",
		},
		{
			filename: "puzzles/blocker.hcl",
			data: `
name = "hcl blocker"
goal {
  row = 2
  col = 4
}
vehicle "r" {
  row         = 2
  col         = 2
  length      = 2
  orientation = "H"
}
vehicle "b" {
  row         = 2
  col         = 4
  length      = 2
  orientation = "V"
}
`,
			wantName: "hcl blocker",
		},
		{
			filename: "blocker.txt",
			data:     "# blocker ahead\n......\n......\n..rrb.\n....b.\n......\n......\n",
			wantName: "blocker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			config, err := Decode(tt.filename, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, config.Name)

			puzzle, err := engine.BuildPuzzle(config)
			require.NoError(t, err)
			assert.Equal(t, wantVehicles, puzzle.Initial.Vehicles())
			assert.Equal(t, engine.Vehicle{Name: "r", Row: 2, Col: 4, Length: 2, Orientation: engine.Horizontal}, puzzle.Goal)
		})
	}
}

func TestDecode_RecordErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     string
	}{
		{"bad length", "p.csv", "r,2,2,4,H\n"},
		{"bad orientation", "p.csv", "r,2,2,2,D\n"},
		{"missing name", "p.json", `{"vehicles":[{"name":"","row":0,"col":0,"length":2,"orientation":"H"}]}`},
		{"negative row", "p.yaml", "vehicles:\n  - {name: r, row: -1, col: 0, length: 2, orientation: H}\n"},
		{"size out of range", "p.json", `{"size": 40, "layout": ["rr.", "...", "..."]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.filename, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, engine.ErrInvalidPuzzle), "expected ErrInvalidPuzzle, got %v", err)
		})
	}
}

func TestDecode_SyntaxErrors(t *testing.T) {
	tests := []struct {
		filename string
		data     string
	}{
		{"p.json", `{"name": `},
		{"p.yaml", "vehicles: [unclosed"},
		{"p.csv", "r,2,2\n"},
		{"p.csv", "r,two,2,2,H\n"},
		{"p.hcl", `vehicle "r" { row = }`},
		{"p.hcl", `vehicle "r" { row = 1 }`},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			_, err := Decode(tt.filename, []byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecode_UnsupportedExtension(t *testing.T) {
	_, err := Decode("puzzle.xml", []byte("<puzzle/>"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, Supported("puzzle.xml"))
	assert.True(t, Supported("PUZZLE.JSON"))
}

func TestEncode_RoundTrip(t *testing.T) {
	original := &engine.PuzzleConfig{
		Name:   "roundtrip",
		Layout: []string{"......", "......", "..rrb.", "....b.", "......", "......"},
	}

	for _, format := range []Format{FormatJSON, FormatYAML, FormatCSV, FormatLayout} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(format, original)
			require.NoError(t, err)

			decoded, err := Decode("roundtrip."+string(format), data)
			require.NoError(t, err)

			puzzle, err := engine.BuildPuzzle(decoded)
			require.NoError(t, err)
			assert.Equal(t, wantVehicles, puzzle.Initial.Vehicles())
		})
	}

	_, err := Encode(FormatHCL, original)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.txt")
	require.NoError(t, os.WriteFile(path, []byte("rr.\n...\n...\n"), 0644))

	config, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tiny", config.Name)
	assert.Equal(t, []string{"rr.", "...", "..."}, config.Layout)

	_, err = ReadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestPuzzleName(t *testing.T) {
	assert.Equal(t, "classic", PuzzleName("puzzles/classic.json"))
	assert.Equal(t, "a.b", PuzzleName("/tmp/a.b.yaml"))
	assert.Equal(t, []string{".csv", ".hcl", ".json", ".txt", ".yaml", ".yml"}, Extensions())
}

func TestPrecedence(t *testing.T) {
	prec := Precedence()
	assert.Equal(t, ".json", prec[0])
	assert.ElementsMatch(t, Extensions(), prec)

	prec[0] = ".csv"
	assert.Equal(t, ".json", Precedence()[0], "Precedence must return a copy")
}

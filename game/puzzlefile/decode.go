package puzzlefile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// Format identifies a puzzle file encoding
type Format string

const (
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatCSV    Format = "csv"
	FormatHCL    Format = "hcl"
	FormatLayout Format = "txt"
)

// ErrUnsupportedFormat is returned for file extensions with no reader
var ErrUnsupportedFormat = errors.New("unsupported puzzle format")

var extensions = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".csv":  FormatCSV,
	".hcl":  FormatHCL,
	".txt":  FormatLayout,
}

// Extensions lists every file extension that can be decoded
func Extensions() []string {
	exts := make([]string, 0, len(extensions))
	for ext := range extensions {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// precedence orders extensions when several files share a stem
var precedence = []string{".json", ".yaml", ".yml", ".hcl", ".csv", ".txt"}

// Precedence lists extensions in the order a library resolves a puzzle
// name, most preferred first
func Precedence() []string {
	return slices.Clone(precedence)
}

// FormatFor picks the format from a filename's extension
func FormatFor(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Supported reports whether filename has a decodable extension
func Supported(filename string) bool {
	_, err := FormatFor(filename)
	return err == nil
}

// PuzzleName derives a puzzle name from a file path by dropping the
// directory and extension
func PuzzleName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadFile reads and decodes a puzzle file
func ReadFile(path string) (*engine.PuzzleConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(path, data)
}

// Decode parses data according to filename's extension, validates the
// records and fills in the puzzle name from the file stem when missing.
// The returned config is not yet checked for board-level consistency;
// use engine.BuildPuzzle for that.
func Decode(filename string, data []byte) (*engine.PuzzleConfig, error) {
	format, err := FormatFor(filename)
	if err != nil {
		return nil, err
	}

	var config *engine.PuzzleConfig
	switch format {
	case FormatJSON:
		config, err = decodeJSON(data)
	case FormatYAML:
		config, err = decodeYAML(data)
	case FormatCSV:
		config, err = decodeCSV(data)
	case FormatHCL:
		config, err = decodeHCL(filename, data)
	case FormatLayout:
		config, err = decodeLayout(data)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}

	if config.Name == "" {
		config.Name = PuzzleName(filename)
	}
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("validate %s: %w", filename, err)
	}
	return config, nil
}

// Encode renders config in the given format. CSV and layout text carry
// only placement, so name and messages are lost for those formats.
func Encode(format Format, config *engine.PuzzleConfig) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(config, "", "  ")
	case FormatYAML:
		return yaml.Marshal(config)
	case FormatCSV:
		return encodeCSV(config)
	case FormatLayout:
		return encodeLayout(config)
	default:
		return nil, fmt.Errorf("%w: cannot encode %q", ErrUnsupportedFormat, format)
	}
}

func decodeJSON(data []byte) (*engine.PuzzleConfig, error) {
	var config engine.PuzzleConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func decodeYAML(data []byte) (*engine.PuzzleConfig, error) {
	var config engine.PuzzleConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

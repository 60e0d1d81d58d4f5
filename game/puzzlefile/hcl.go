package puzzlefile

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// hclPuzzleFile represents the top-level structure of an HCL puzzle file:
//
//	name   = "classic"
//	target = "r"
//	goal { row = 2  col = 4 }
//	vehicle "r" { row = 2  col = 0  length = 2  orientation = "H" }
type hclPuzzleFile struct {
	Name        string        `hcl:"name,optional"`
	Description string        `hcl:"description,optional"`
	Size        int           `hcl:"size,optional"`
	Target      string        `hcl:"target,optional"`
	Layout      []string      `hcl:"layout,optional"`
	Goal        *hclGoal      `hcl:"goal,block"`
	Vehicles    []*hclVehicle `hcl:"vehicle,block"`
	Messages    *hclMessages  `hcl:"messages,block"`
}

type hclGoal struct {
	Row int `hcl:"row"`
	Col int `hcl:"col"`
}

type hclVehicle struct {
	Name        string `hcl:"name,label"`
	Row         int    `hcl:"row"`
	Col         int    `hcl:"col"`
	Length      int    `hcl:"length"`
	Orientation string `hcl:"orientation"`
}

type hclMessages struct {
	Welcome  string `hcl:"welcome,optional"`
	Moved    string `hcl:"moved,optional"`
	CantMove string `hcl:"cant_move,optional"`
	Solved   string `hcl:"solved,optional"`
}

func decodeHCL(filename string, data []byte) (*engine.PuzzleConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %w", diags)
	}

	var parsed hclPuzzleFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %w", diags)
	}

	config := &engine.PuzzleConfig{
		Name:        parsed.Name,
		Description: parsed.Description,
		Size:        parsed.Size,
		Target:      parsed.Target,
		Layout:      parsed.Layout,
	}
	if parsed.Goal != nil {
		config.Goal = &engine.Position{Row: parsed.Goal.Row, Col: parsed.Goal.Col}
	}
	for _, v := range parsed.Vehicles {
		config.Vehicles = append(config.Vehicles, engine.VehicleConfig{
			Name:        v.Name,
			Row:         v.Row,
			Col:         v.Col,
			Length:      v.Length,
			Orientation: v.Orientation,
		})
	}
	if m := parsed.Messages; m != nil {
		config.Messages = engine.Messages{Welcome: m.Welcome, Moved: m.Moved, CantMove: m.CantMove, Solved: m.Solved}
	}
	return config, nil
}

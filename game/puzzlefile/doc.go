// Package puzzlefile reads and writes puzzle definitions.
//
// The format is chosen from the file extension:
//
//	.json        engine.PuzzleConfig as JSON
//	.yaml, .yml  engine.PuzzleConfig as YAML
//	.csv         one vehicle per record: name,row,col,length,H|V
//	.hcl         attributes plus goal and labelled vehicle blocks
//	.txt         the board drawn one row per line, '.' for empty
//
// Decode validates individual records (required names, lengths of 2 or 3,
// known orientation codes) with go-playground/validator. Board-level rules
// such as overlap and goal reachability are left to engine.BuildPuzzle.
package puzzlefile

package puzzlefile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wricardo/rush-hour-solver/game/engine"
)

// puzzleValidate checks record-level constraints declared in struct tags
var puzzleValidate *validator.Validate

func init() {
	puzzleValidate = validator.New(validator.WithRequiredStructEnabled())
	puzzleValidate.RegisterStructValidation(validateVehicleConfig, engine.VehicleConfig{})
}

// validateVehicleConfig rejects orientation codes the engine cannot parse
func validateVehicleConfig(sl validator.StructLevel) {
	vc := sl.Current().Interface().(engine.VehicleConfig)
	if _, err := engine.ParseOrientation(vc.Orientation); err != nil {
		sl.ReportError(vc.Orientation, "Orientation", "orientation", "orientation", "")
	}
}

// Validate checks field types and ranges of every record in config.
// Errors wrap engine.ErrInvalidPuzzle.
func Validate(config *engine.PuzzleConfig) error {
	err := puzzleValidate.Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", engine.ErrInvalidPuzzle, strings.Join(msgs, "; "))
}

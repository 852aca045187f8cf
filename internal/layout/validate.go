package layout

import (
	"fmt"
	"math"
	"strings"
)

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	Source  string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Source == "" {
		if e.Field == "" {
			return e.Message
		}
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Source, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Source, e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// Validate is the input gate in front of every assessment. It rejects
// layouts the scoring formulas cannot handle: non-positive layout or zone
// dimensions, non-finite coordinates, missing or duplicate zone ids and
// unknown zone types.
func Validate(l Layout, source string) error {
	var errs ValidationErrors
	add := func(field, msg string) {
		errs = append(errs, ValidationError{Source: source, Field: field, Message: msg})
	}
	positive := func(field string, v float64) {
		if !finite(v) {
			add(field, fmt.Sprintf("is %v, must be a finite number", v))
		} else if v <= 0 {
			add(field, fmt.Sprintf("is %.4f, must be positive", v))
		}
	}
	coordinate := func(field string, v float64) {
		if !finite(v) {
			add(field, fmt.Sprintf("is %v, must be a finite number", v))
		}
	}

	positive("dimensions.width", l.Dimensions.Width)
	positive("dimensions.height", l.Dimensions.Height)

	seen := make(map[string]struct{}, len(l.Zones))
	for idx, z := range l.Zones {
		path := fmt.Sprintf("zones[%d]", idx)
		if strings.TrimSpace(z.ID) == "" {
			add(path+".id", "id is required")
		} else if _, dup := seen[z.ID]; dup {
			add(path+".id", fmt.Sprintf("duplicate zone id %q", z.ID))
		} else {
			seen[z.ID] = struct{}{}
		}
		if !z.Type.Valid() {
			add(path+".type", fmt.Sprintf("unknown zone type %q", z.Type))
		}
		coordinate(path+".position.x", z.Position.X)
		coordinate(path+".position.y", z.Position.Y)
		positive(path+".size.width", z.Size.Width)
		positive(path+".size.height", z.Size.Height)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DimensionMode selects how the floor size is entered.
type DimensionMode string

const (
	ModePaired DimensionMode = "paired"
	ModeDirect DimensionMode = "direct"
)

// Field names carried by validation errors.
const (
	FieldLength    = "length"
	FieldWidth     = "width"
	FieldArea      = "area"
	FieldPerimeter = "perimeter"
)

// Bounds are the accepted ranges for dimensions, in metres and square metres.
type Bounds struct {
	MinDimension float64
	MaxDimension float64
	MinArea      float64
	MaxArea      float64
}

// DefaultBounds returns the stock limits: 1-50 m per side, 1-2500 m².
func DefaultBounds() Bounds {
	return Bounds{MinDimension: 1, MaxDimension: 50, MinArea: 1, MaxArea: 2500}
}

// DimensionInput is the raw free-text state of the dimensions step.
type DimensionInput struct {
	Mode   DimensionMode `json:"mode"`
	Length string        `json:"length"`
	Width  string        `json:"width"`
	Area   string        `json:"area"`
}

// ValidationError is one violated rule of the dimensions step.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DimensionResult is the output of ValidateDimensions. Area is zero whenever
// Errors is non-empty or the inputs are incomplete.
type DimensionResult struct {
	Errors []ValidationError `json:"errors"`
	Area   float64           `json:"area"`
	// Length and Width are the parsed paired inputs, zero when absent.
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
}

// Messages returns the human readable error list.
func (r DimensionResult) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Message
	}
	return out
}

// Valid reports a complete, error-free entry.
func (r DimensionResult) Valid() bool {
	return len(r.Errors) == 0 && r.Area > 0
}

// ValidateDimensions checks the raw inputs against b. Empty fields are not yet
// entered and produce no error.
func ValidateDimensions(in DimensionInput, b Bounds) DimensionResult {
	var res DimensionResult

	if in.Mode == ModeDirect {
		area, present, ok := parseNumber(in.Area)
		if !present {
			return res
		}
		if !ok {
			res.Errors = append(res.Errors, ValidationError{FieldArea, "Powierzchnia musi być liczbą."})
			return res
		}
		if e, bad := areaError(area, b); bad {
			res.Errors = append(res.Errors, e)
			return res
		}
		res.Area = area
		return res
	}

	length, lengthPresent, lengthOK := parseNumber(in.Length)
	width, widthPresent, widthOK := parseNumber(in.Width)

	if lengthPresent {
		if e, bad := sideError(FieldLength, "Długość", length, lengthOK, b); bad {
			res.Errors = append(res.Errors, e)
		} else {
			res.Length = length
		}
	}
	if widthPresent {
		if e, bad := sideError(FieldWidth, "Szerokość", width, widthOK, b); bad {
			res.Errors = append(res.Errors, e)
		} else {
			res.Width = width
		}
	}

	if !lengthPresent || !widthPresent || !lengthOK || !widthOK {
		return res
	}

	area := length * width
	if e, bad := areaError(area, b); bad {
		res.Errors = append(res.Errors, e)
	}
	if len(res.Errors) == 0 {
		res.Area = area
	}
	return res
}

func sideError(field, label string, v float64, ok bool, b Bounds) (ValidationError, bool) {
	if !ok {
		return ValidationError{field, label + " musi być liczbą."}, true
	}
	if v < b.MinDimension {
		return ValidationError{field, fmt.Sprintf("%s musi wynosić co najmniej %s m.", label, formatNumber(b.MinDimension))}, true
	}
	if v > b.MaxDimension {
		return ValidationError{field, fmt.Sprintf("%s nie może przekraczać %s m.", label, formatNumber(b.MaxDimension))}, true
	}
	return ValidationError{}, false
}

func areaError(area float64, b Bounds) (ValidationError, bool) {
	if area < b.MinArea {
		return ValidationError{FieldArea, fmt.Sprintf("Powierzchnia musi wynosić co najmniej %s m².", formatNumber(b.MinArea))}, true
	}
	if area > b.MaxArea {
		return ValidationError{FieldArea, fmt.Sprintf("Powierzchnia nie może przekraczać %s m².", formatNumber(b.MaxArea))}, true
	}
	return ValidationError{}, false
}

// MaxPerimeter is the longest perimeter a room within b can have.
func (b Bounds) MaxPerimeter() float64 {
	return 4 * b.MaxDimension
}

// ValidatePerimeter checks the perimeter of per running metre services. Blank
// input is no perimeter; anything else must be positive and at most
// b.MaxPerimeter(). The value is zero whenever an error is returned.
func ValidatePerimeter(raw string, b Bounds) (float64, *ValidationError) {
	v, present, ok := parseNumber(raw)
	switch {
	case !present:
		return 0, nil
	case !ok:
		return 0, &ValidationError{FieldPerimeter, "Obwód musi być liczbą."}
	case v <= 0:
		return 0, &ValidationError{FieldPerimeter, "Obwód musi być większy od zera."}
	case v > b.MaxPerimeter():
		return 0, &ValidationError{FieldPerimeter, fmt.Sprintf("Obwód nie może przekraczać %s mb.", formatNumber(b.MaxPerimeter()))}
	}
	return v, nil
}

// parseNumber reads a free-text number. A comma is accepted as the decimal
// separator. present is false for blank input.
func parseNumber(raw string) (v float64, present, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, true, false
	}
	return v, true, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package pricing

import (
	"math"

	"github.com/Simplici0/posadzki/internal/catalog"
)

// Units used on line items.
const (
	UnitSquareMetre  = "m²"
	UnitRunningMetre = "mb"
	UnitLumpSum      = "kpl."
)

// LineKind classifies a line item.
type LineKind string

const (
	LineBase     LineKind = "base"
	LineColor    LineKind = "color"
	LineConcrete LineKind = "concrete"
	LineService  LineKind = "service"
)

// Input represents every selection the price depends on. Nil pointers mean the
// selection has not been made.
type Input struct {
	Area       float64
	Surface    *catalog.SurfaceType
	Color      *catalog.ColorOption
	Concrete   *catalog.ConcreteState
	ServiceIDs []string
	Perimeter  float64
	Services   []catalog.AdditionalService
}

// LineItem is one priced row of the quote.
type LineItem struct {
	Kind      LineKind `json:"kind"`
	RefID     string   `json:"refId"`
	Name      string   `json:"name"`
	Quantity  float64  `json:"quantity"`
	Unit      string   `json:"unit"`
	UnitPrice float64  `json:"unitPrice"`
	Total     float64  `json:"total"`
	FlatRate  bool     `json:"flatRate,omitempty"`
}

// Breakdown contains the per-component sums of the calculation.
type Breakdown struct {
	BaseCost     float64 `json:"baseCost"`
	ColorCost    float64 `json:"colorCost"`
	ConcreteCost float64 `json:"concreteCost"`
	ServicesCost float64 `json:"servicesCost"`
}

// Totals contains roll-up values from the pricing calculation.
type Totals struct {
	Total   float64 `json:"total"`
	PerArea float64 `json:"perArea"`
}

// Result groups the full pricing output, including line items, breakdown and totals.
type Result struct {
	Ready     bool       `json:"ready"`
	Lines     []LineItem `json:"lines"`
	Included  []string   `json:"included"`
	Breakdown Breakdown  `json:"breakdown"`
	Totals    Totals     `json:"totals"`
}

// Calculate computes the quote price. Without a positive area, a surface type or
// a color the result is not ready and every total is zero. The same holds when
// any amount overflows to a non-finite value.
func Calculate(in Input) Result {
	if !(in.Area > 0) || math.IsInf(in.Area, 0) || in.Surface == nil || in.Color == nil {
		return Result{}
	}
	area := in.Area

	base := baseLine(area, in.Surface)
	lines := []LineItem{base}

	colorLine := LineItem{
		Kind:      LineColor,
		RefID:     in.Color.ID,
		Name:      colorName(in.Color),
		Quantity:  area,
		Unit:      UnitSquareMetre,
		UnitPrice: in.Color.AdditionalPrice,
		Total:     area * in.Color.AdditionalPrice,
	}
	lines = append(lines, colorLine)

	breakdown := Breakdown{BaseCost: base.Total, ColorCost: colorLine.Total}

	if in.Concrete != nil {
		line := LineItem{
			Kind:      LineConcrete,
			RefID:     in.Concrete.ID,
			Name:      "Przygotowanie podłoża: " + in.Concrete.Name,
			Quantity:  area,
			Unit:      UnitSquareMetre,
			UnitPrice: in.Concrete.AdditionalPrice,
		}
		if in.Concrete.AdditionalPrice > 0 {
			line.Total = area * in.Concrete.AdditionalPrice
		}
		breakdown.ConcreteCost = line.Total
		lines = append(lines, line)
	}

	selected := make(map[string]bool, len(in.ServiceIDs))
	for _, id := range in.ServiceIDs {
		selected[id] = true
	}

	var included []string
	for _, svc := range in.Services {
		if !selected[svc.ID] {
			continue
		}
		if svc.IncludedInBase {
			included = append(included, svc.Name)
			continue
		}
		line := serviceLine(svc, area, in.Perimeter)
		breakdown.ServicesCost += line.Total
		lines = append(lines, line)
	}

	total := breakdown.BaseCost + breakdown.ColorCost + breakdown.ConcreteCost + breakdown.ServicesCost
	if !finite(total) {
		return Result{}
	}
	for _, line := range lines {
		if !finite(line.Total) {
			return Result{}
		}
	}
	total = sanitize(total)

	return Result{
		Ready:     true,
		Lines:     lines,
		Included:  included,
		Breakdown: breakdown,
		Totals: Totals{
			Total:   total,
			PerArea: sanitize(total / area),
		},
	}
}

// MatchRange returns the first range containing area.
func MatchRange(ranges []catalog.PriceRange, area float64) (catalog.PriceRange, bool) {
	for _, r := range ranges {
		if r.Contains(area) {
			return r, true
		}
	}
	return catalog.PriceRange{}, false
}

// A flat-rate band is a literal total for the whole floor; per-unit bands and
// the base price are multiplied by the area.
func baseLine(area float64, surface *catalog.SurfaceType) LineItem {
	line := LineItem{
		Kind:  LineBase,
		RefID: surface.ID,
		Name:  "Posadzka żywiczna: " + surface.Name,
	}

	r, ok := MatchRange(surface.PriceRanges, area)
	switch {
	case ok && r.IsFlatRate:
		line.Quantity = 1
		line.Unit = UnitLumpSum
		line.UnitPrice = r.Price
		line.Total = r.Price
		line.FlatRate = true
	case ok:
		line.Quantity = area
		line.Unit = UnitSquareMetre
		line.UnitPrice = r.Price
		line.Total = area * r.Price
	default:
		line.Quantity = area
		line.Unit = UnitSquareMetre
		line.UnitPrice = surface.BasePrice
		line.Total = area * surface.BasePrice
	}
	return line
}

func serviceLine(svc catalog.AdditionalService, area, perimeter float64) LineItem {
	line := LineItem{Kind: LineService, RefID: svc.ID, Name: svc.Name}

	switch {
	case svc.PricePerArea != 0:
		line.Quantity = area
		line.Unit = UnitSquareMetre
		line.UnitPrice = svc.PricePerArea
		line.Total = area * svc.PricePerArea
	case svc.PricePerPerimeter != 0 && perimeter > 0:
		line.Quantity = perimeter
		line.Unit = UnitRunningMetre
		line.UnitPrice = svc.PricePerPerimeter
		line.Total = perimeter * svc.PricePerPerimeter
	case svc.FixedPrice != 0:
		line.Quantity = 1
		line.Unit = UnitLumpSum
		line.UnitPrice = svc.FixedPrice
		line.Total = svc.FixedPrice
	case svc.PricePerPerimeter != 0:
		line.Unit = UnitRunningMetre
		line.UnitPrice = svc.PricePerPerimeter
	}
	return line
}

func colorName(c *catalog.ColorOption) string {
	if c.RALCode == "" {
		return "Kolor: " + c.Name
	}
	return "Kolor: " + c.Name + " (" + c.RALCode + ")"
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Round2 rounds a monetary value for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

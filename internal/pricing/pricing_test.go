package pricing

import (
	"math"
	"testing"

	"github.com/Simplici0/posadzki/internal/catalog"
)

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func ptr(f float64) *float64 { return &f }

func TestCalculate_NoRangesUsesBasePrice(t *testing.T) {
	surface := &catalog.SurfaceType{ID: "s", Name: "Gładka", BasePrice: 200}
	color := &catalog.ColorOption{ID: "c", Name: "Szary"}

	for _, area := range []float64{1, 12.5, 20, 2500} {
		result := Calculate(Input{Area: area, Surface: surface, Color: color})

		nearlyEqual(t, "baseCost", result.Breakdown.BaseCost, area*200)
		nearlyEqual(t, "total", result.Totals.Total, area*200)
		nearlyEqual(t, "perArea", result.Totals.PerArea, 200)
	}
}

func TestCalculate_FlatRateRangeIgnoresExactArea(t *testing.T) {
	surface := &catalog.SurfaceType{
		ID:        "s",
		BasePrice: 200,
		PriceRanges: []catalog.PriceRange{
			{Min: 0, Max: ptr(34), Price: 5000, IsFlatRate: true},
		},
	}
	color := &catalog.ColorOption{ID: "c"}

	for _, area := range []float64{1, 10, 33.9, 34} {
		result := Calculate(Input{Area: area, Surface: surface, Color: color})
		nearlyEqual(t, "baseCost", result.Breakdown.BaseCost, 5000)
		if !result.Lines[0].FlatRate || result.Lines[0].Unit != UnitLumpSum {
			t.Fatalf("expected flat-rate base line, got %+v", result.Lines[0])
		}
	}

	outside := Calculate(Input{Area: 35, Surface: surface, Color: color})
	nearlyEqual(t, "fallback baseCost", outside.Breakdown.BaseCost, 35*200)
}

func TestCalculate_FirstMatchingRangeWins(t *testing.T) {
	surface := &catalog.SurfaceType{
		ID:        "s",
		BasePrice: 999,
		PriceRanges: []catalog.PriceRange{
			{Min: 50, Max: nil, Price: 150},
			{Min: 0, Max: ptr(60), Price: 180},
		},
	}
	color := &catalog.ColorOption{ID: "c"}

	nearlyEqual(t, "area 55", Calculate(Input{Area: 55, Surface: surface, Color: color}).Breakdown.BaseCost, 55*150)
	nearlyEqual(t, "area 40", Calculate(Input{Area: 40, Surface: surface, Color: color}).Breakdown.BaseCost, 40*180)
}

func TestCalculate_GapBetweenRangesFallsBackToBasePrice(t *testing.T) {
	surface := &catalog.SurfaceType{
		ID:        "s",
		BasePrice: 220,
		PriceRanges: []catalog.PriceRange{
			{Min: 0, Max: ptr(20), Price: 4500, IsFlatRate: true},
			{Min: 21, Max: nil, Price: 200},
		},
	}
	color := &catalog.ColorOption{ID: "c"}

	result := Calculate(Input{Area: 20.5, Surface: surface, Color: color})
	nearlyEqual(t, "baseCost", result.Breakdown.BaseCost, 20.5*220)
}

func TestCalculate_ColorSurchargeAlwaysPerArea(t *testing.T) {
	surface := &catalog.SurfaceType{
		ID:          "s",
		PriceRanges: []catalog.PriceRange{{Min: 0, Max: ptr(34), Price: 5000, IsFlatRate: true}},
	}
	color := &catalog.ColorOption{ID: "c", AdditionalPrice: 50}

	result := Calculate(Input{Area: 30, Surface: surface, Color: color})

	nearlyEqual(t, "colorCost", result.Breakdown.ColorCost, 30*50)
	nearlyEqual(t, "total", result.Totals.Total, 6500)
}

func TestCalculate_ConcreteSurcharge(t *testing.T) {
	surface := &catalog.SurfaceType{ID: "s", BasePrice: 100}
	color := &catalog.ColorOption{ID: "c"}

	withSurcharge := Calculate(Input{Area: 10, Surface: surface, Color: color, Concrete: &catalog.ConcreteState{ID: "old", AdditionalPrice: 25}})
	nearlyEqual(t, "concreteCost", withSurcharge.Breakdown.ConcreteCost, 250)
	nearlyEqual(t, "total", withSurcharge.Totals.Total, 1250)

	free := Calculate(Input{Area: 10, Surface: surface, Color: color, Concrete: &catalog.ConcreteState{ID: "new"}})
	nearlyEqual(t, "free concreteCost", free.Breakdown.ConcreteCost, 0)
	nearlyEqual(t, "free total", free.Totals.Total, 1000)
}

func TestCalculate_ServicesByPricingMode(t *testing.T) {
	services := []catalog.AdditionalService{
		{ID: "area", Name: "Grunt", PricePerArea: 8},
		{ID: "perimeter", Name: "Cokół", PricePerPerimeter: 45},
		{ID: "fixed", Name: "Dojazd", FixedPrice: 300},
		{ID: "included", Name: "Sprzątanie", IncludedInBase: true, FixedPrice: 999},
		{ID: "unpriced", Name: "Konsultacja"},
		{ID: "unselected", Name: "Lakier", PricePerArea: 25},
	}
	surface := &catalog.SurfaceType{ID: "s", BasePrice: 100}
	color := &catalog.ColorOption{ID: "c"}
	ids := []string{"area", "perimeter", "fixed", "included", "unpriced"}

	withPerimeter := Calculate(Input{Area: 20, Surface: surface, Color: color, ServiceIDs: ids, Perimeter: 18, Services: services})
	nearlyEqual(t, "servicesCost", withPerimeter.Breakdown.ServicesCost, 20*8+18*45+300)
	nearlyEqual(t, "total", withPerimeter.Totals.Total, 2000+160+810+300)
	if len(withPerimeter.Included) != 1 || withPerimeter.Included[0] != "Sprzątanie" {
		t.Fatalf("unexpected included services: %v", withPerimeter.Included)
	}

	withoutPerimeter := Calculate(Input{Area: 20, Surface: surface, Color: color, ServiceIDs: ids, Services: services})
	nearlyEqual(t, "servicesCost without perimeter", withoutPerimeter.Breakdown.ServicesCost, 20*8+300)
}

func TestCalculate_NotReadyYieldsZero(t *testing.T) {
	surface := &catalog.SurfaceType{ID: "s", BasePrice: 100}
	color := &catalog.ColorOption{ID: "c"}

	for name, in := range map[string]Input{
		"zero area":  {Area: 0, Surface: surface, Color: color},
		"nan area":   {Area: math.NaN(), Surface: surface, Color: color},
		"no surface": {Area: 10, Color: color},
		"no color":   {Area: 10, Surface: surface},
	} {
		result := Calculate(in)
		if result.Ready || result.Totals.Total != 0 || result.Totals.PerArea != 0 {
			t.Fatalf("%s: expected zero result, got %+v", name, result)
		}
	}
}

func TestCalculate_OverflowingLineIsNotReady(t *testing.T) {
	services := []catalog.AdditionalService{{ID: "cokol", PricePerPerimeter: 45}}
	surface := &catalog.SurfaceType{ID: "s", BasePrice: 200}
	color := &catalog.ColorOption{ID: "c"}

	result := Calculate(Input{Area: 20, Surface: surface, Color: color, ServiceIDs: []string{"cokol"}, Perimeter: 1e308, Services: services})

	if result.Ready || result.Totals.Total != 0 || len(result.Lines) != 0 {
		t.Fatalf("expected not ready result for overflowing line, got %+v", result)
	}
}

func TestCalculate_LineTotalsSumToTotal(t *testing.T) {
	services := []catalog.AdditionalService{
		{ID: "grunt", PricePerArea: 8.35},
		{ID: "cokol", PricePerPerimeter: 41.7},
	}
	surface := &catalog.SurfaceType{ID: "s", BasePrice: 187.9}
	color := &catalog.ColorOption{ID: "c", AdditionalPrice: 13.3}
	concrete := &catalog.ConcreteState{ID: "k", AdditionalPrice: 9.9}

	result := Calculate(Input{Area: 23.7, Surface: surface, Color: color, Concrete: concrete, ServiceIDs: []string{"grunt", "cokol"}, Perimeter: 19.4, Services: services})

	sum := 0.0
	for _, line := range result.Lines {
		sum += line.Total
	}
	nearlyEqual(t, "sum of lines", sum, result.Totals.Total)
	nearlyEqual(t, "perArea", result.Totals.PerArea, result.Totals.Total/23.7)
}

func TestRound2(t *testing.T) {
	nearlyEqual(t, "Round2", Round2(138.666666), 138.67)
	nearlyEqual(t, "Round2 exact", Round2(4160), 4160)
}

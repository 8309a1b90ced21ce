package calculator

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

// testCatalog is a small fixed catalog so totals do not follow the stock prices.
func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		SurfaceTypes: []catalog.SurfaceType{
			{ID: "plain", Name: "Gładka", BasePrice: 200},
			{
				ID:          "flat",
				Name:        "Ryczałt",
				BasePrice:   180,
				PriceRanges: []catalog.PriceRange{{Min: 0, Max: ptr(34), Price: 5000, IsFlatRate: true}},
			},
		},
		Colors: []catalog.ColorOption{
			{ID: "grey", Name: "Szary"},
			{ID: "blue", Name: "Niebieski", AdditionalPrice: 50},
		},
		Services: []catalog.AdditionalService{
			{ID: "primer", Name: "Gruntowanie", PricePerArea: 8, Mandatory: true},
			{ID: "skirting", Name: "Cokół", PricePerPerimeter: 45},
			{ID: "transport", Name: "Transport", FixedPrice: 300},
		},
		RoomTypes: []catalog.RoomType{
			{ID: catalog.GarageRoomTypeID, Name: "Garaż", Available: true},
			{ID: "kitchen", Name: "Kuchnia", Available: true},
			{ID: "shop", Name: "Lokal", Available: false},
		},
		ConcreteStates: []catalog.ConcreteState{
			{ID: "new", Name: "Nowa wylewka"},
			{ID: "old", Name: "Stary beton", AdditionalPrice: 10},
		},
		Steps: []catalog.StepConfig{
			{StepID: catalog.StepConcreteState, Visible: true, CanBeHidden: true},
			{StepID: catalog.StepColor, Visible: true, CanBeHidden: true},
			{StepID: catalog.StepAdditionalServices, Visible: true, CanBeHidden: true},
		},
	}
}

func withStepHidden(cat *catalog.Catalog, stepID string) *catalog.Catalog {
	for i := range cat.Steps {
		if cat.Steps[i].StepID == stepID {
			cat.Steps[i].Visible = false
		}
	}
	return cat
}

// snapshotOK unwraps a wizard call, failing the test on error.
func snapshotOK(t *testing.T) func(Snapshot, error) Snapshot {
	return func(snap Snapshot, err error) Snapshot {
		t.Helper()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return snap
	}
}

package catalog

import (
	"context"
	"errors"
	"testing"
)

func TestNormalize_EmptySourceFallsBackForEveryKind(t *testing.T) {
	c := Normalize(Raw{}, nil)

	if !c.UsingFallback() {
		t.Fatalf("expected fallback flag for empty source")
	}
	for _, kind := range Kinds {
		if !c.Fallback[kind] {
			t.Fatalf("expected kind %s to use fallback", kind)
		}
	}
	if len(c.SurfaceTypes) != len(DefaultSurfaceTypes()) {
		t.Fatalf("expected default surface types, got %d", len(c.SurfaceTypes))
	}
}

func TestNormalize_CoercesNumbersAndDecodesEncodedFields(t *testing.T) {
	raw := Raw{
		SurfaceTypes: []Record{
			{
				"id":           "gladka",
				"name":         "Gładka",
				"base_price":   "210.5",
				"price_ranges": `[{"min":0,"max":34,"price":5000,"isFlatRate":true},{"min":"35","max":null,"price":"190"}]`,
				"properties":   `["Łatwa w czyszczeniu"]`,
			},
			{
				"id":          "posypka",
				"name":        "Posypka",
				"basePrice":   "abc",
				"priceRanges": []any{map[string]any{"min": 0.0, "price": 250.0}},
				"properties":  "{not json",
			},
		},
	}

	c := Normalize(raw, nil)
	if c.Fallback[KindSurfaceTypes] {
		t.Fatalf("surface types should not fall back")
	}
	if !c.Fallback[KindColors] {
		t.Fatalf("colors should fall back")
	}

	gladka := c.SurfaceType("gladka")
	if gladka == nil {
		t.Fatalf("gladka not found")
	}
	if gladka.BasePrice != 210.5 {
		t.Fatalf("BasePrice = %v, want 210.5", gladka.BasePrice)
	}
	if len(gladka.PriceRanges) != 2 {
		t.Fatalf("expected 2 ranges, got %+v", gladka.PriceRanges)
	}
	if !gladka.PriceRanges[0].IsFlatRate || gladka.PriceRanges[0].Max == nil || *gladka.PriceRanges[0].Max != 34 {
		t.Fatalf("unexpected first range: %+v", gladka.PriceRanges[0])
	}
	if gladka.PriceRanges[1].Max != nil || gladka.PriceRanges[1].Min != 35 || gladka.PriceRanges[1].Price != 190 {
		t.Fatalf("unexpected second range: %+v", gladka.PriceRanges[1])
	}
	if len(gladka.Properties) != 1 || gladka.Properties[0] != "Łatwa w czyszczeniu" {
		t.Fatalf("unexpected properties: %v", gladka.Properties)
	}

	posypka := c.SurfaceType("posypka")
	if posypka.BasePrice != 0 {
		t.Fatalf("non-numeric base price should become 0, got %v", posypka.BasePrice)
	}
	if len(posypka.PriceRanges) != 1 || posypka.PriceRanges[0].Price != 250 {
		t.Fatalf("structured ranges not parsed: %+v", posypka.PriceRanges)
	}
	if len(posypka.Properties) != 0 {
		t.Fatalf("malformed properties should become empty, got %v", posypka.Properties)
	}
}

func TestNormalize_OnlyFalseValuesDeactivate(t *testing.T) {
	raw := Raw{
		Colors: []Record{
			{"id": "a", "name": "A"},
			{"id": "b", "name": "B", "isActive": true},
			{"id": "c", "name": "C", "isActive": false},
			{"id": "d", "name": "D", "is_active": int64(0)},
			{"id": "e", "name": "E", "isActive": "no"},
			{"id": "f", "name": "F", "isActive": nil},
			{"id": "g", "name": "G", "isActive": "maybe"},
			{"id": "h", "name": "H", "is_active": int64(1)},
		},
	}

	c := Normalize(raw, nil)
	if len(c.Colors) != 5 {
		t.Fatalf("unexpected colors: %+v", c.Colors)
	}
	for _, id := range []string{"a", "b", "f", "g", "h"} {
		if c.Color(id) == nil {
			t.Fatalf("color %q should be active", id)
		}
	}
}

func TestNormalize_AllInactiveFallsBack(t *testing.T) {
	raw := Raw{
		RoomTypes: []Record{
			{"id": "garaz", "name": "Garaż", "isActive": false},
		},
	}

	c := Normalize(raw, nil)
	if !c.Fallback[KindRoomTypes] {
		t.Fatalf("expected room type fallback")
	}
	if len(c.RoomTypes) != len(DefaultRoomTypes()) {
		t.Fatalf("expected default room types, got %+v", c.RoomTypes)
	}
}

func TestNormalize_SkipsRecordsWithoutID(t *testing.T) {
	raw := Raw{
		ConcreteStates: []Record{
			{"name": "bez id"},
			{"id": "nowa", "name": "Nowa wylewka", "additional_price": "0"},
		},
	}

	c := Normalize(raw, nil)
	if c.Fallback[KindConcreteStates] || len(c.ConcreteStates) != 1 {
		t.Fatalf("unexpected concrete states: %+v", c.ConcreteStates)
	}
}

func TestNormalize_ServiceFlagsAndMode(t *testing.T) {
	raw := Raw{
		Services: []Record{
			{"id": "grunt", "name": "Grunt", "price_per_m2": 8, "mandatory": int64(1)},
			{"id": "cokol", "name": "Cokół", "pricePerMb": "45"},
			{"id": "dojazd", "name": "Dojazd", "fixedPrice": 300.0, "defaultSelected": "true"},
			{"id": "sprzatanie", "name": "Sprzątanie", "includedInBase": true, "pricePerM2": 5},
		},
	}

	c := Normalize(raw, nil)
	want := map[string]PricingMode{
		"grunt":      ModePerArea,
		"cokol":      ModePerPerimeter,
		"dojazd":     ModeFixed,
		"sprzatanie": ModeIncluded,
	}
	for id, mode := range want {
		if got := c.Service(id).Mode(); got != mode {
			t.Fatalf("%s mode = %s, want %s", id, got, mode)
		}
	}
	if !c.Service("grunt").Mandatory {
		t.Fatalf("expected grunt to be mandatory")
	}
	if !c.Service("dojazd").DefaultSelected {
		t.Fatalf("expected dojazd to be default selected")
	}
}

func TestStepConfig_ShownIgnoresVisibilityWhenNotHideable(t *testing.T) {
	if !(StepConfig{Visible: false, CanBeHidden: false}).Shown() {
		t.Fatalf("non-hideable step must always be shown")
	}
	if (StepConfig{Visible: false, CanBeHidden: true}).Shown() {
		t.Fatalf("hideable invisible step must be hidden")
	}
}

func TestParseImport_ValidatesAgainstSchema(t *testing.T) {
	valid := []byte(`{
		"surfaceTypes": [{"id": "gladka", "name": "Gładka", "basePrice": "200", "priceRanges": [{"min": 0, "max": 34, "price": 5000, "isFlatRate": true}]}],
		"steps": [{"stepId": "color", "visible": false, "canBeHidden": true}]
	}`)
	raw, err := ParseImport(valid)
	if err != nil {
		t.Fatalf("ParseImport valid: %v", err)
	}
	if len(raw.SurfaceTypes) != 1 || len(raw.Steps) != 1 {
		t.Fatalf("unexpected raw: %+v", raw)
	}

	invalid := []byte(`{"colors": [{"name": "bez id"}]}`)
	if _, err := ParseImport(invalid); err == nil {
		t.Fatalf("expected schema validation error")
	}

	unknown := []byte(`{"textures": []}`)
	if _, err := ParseImport(unknown); err == nil {
		t.Fatalf("expected error for unknown top-level key")
	}
}

type fakeSource struct {
	raw   Raw
	err   error
	calls int
}

func (f *fakeSource) LoadRaw(context.Context) (Raw, error) {
	f.calls++
	return f.raw, f.err
}

type memoryCache struct {
	raw *Raw
}

func (m *memoryCache) GetRaw(context.Context) (Raw, bool, error) {
	if m.raw == nil {
		return Raw{}, false, nil
	}
	return *m.raw, true, nil
}

func (m *memoryCache) SetRaw(_ context.Context, raw Raw) error {
	m.raw = &raw
	return nil
}

func TestLoader_SourceErrorUsesDefaults(t *testing.T) {
	l := NewLoader(&fakeSource{err: errors.New("db down")}, nil, nopLogger())

	c := l.Load(context.Background())
	if !c.UsingFallback() || len(c.Colors) == 0 {
		t.Fatalf("expected default catalog on source error")
	}
}

func TestLoader_CachesRawRecords(t *testing.T) {
	src := &fakeSource{raw: Raw{Colors: []Record{{"id": "x", "name": "X"}}}}
	cache := &memoryCache{}
	l := NewLoader(src, cache, nopLogger())

	first := l.Load(context.Background())
	second := l.Load(context.Background())

	if src.calls != 1 {
		t.Fatalf("expected one source call, got %d", src.calls)
	}
	if first.Color("x") == nil || second.Color("x") == nil {
		t.Fatalf("cached color missing")
	}
}

func TestNormalize_DefaultRawRoundTrips(t *testing.T) {
	c := Normalize(DefaultRaw(), nopLogger())

	if c.UsingFallback() {
		t.Fatalf("default records should normalize without fallback: %v", c.Fallback)
	}

	surfaces := DefaultSurfaceTypes()
	if len(c.SurfaceTypes) != len(surfaces) {
		t.Fatalf("expected %d surface types, got %d", len(surfaces), len(c.SurfaceTypes))
	}
	for i, want := range surfaces {
		got := c.SurfaceTypes[i]
		if got.ID != want.ID || got.BasePrice != want.BasePrice || len(got.PriceRanges) != len(want.PriceRanges) {
			t.Fatalf("surface %d changed in round trip: %+v", i, got)
		}
		for j, r := range want.PriceRanges {
			gr := got.PriceRanges[j]
			if gr.Min != r.Min || gr.Price != r.Price || gr.IsFlatRate != r.IsFlatRate || (gr.Max == nil) != (r.Max == nil) {
				t.Fatalf("surface %s range %d changed: %+v", want.ID, j, gr)
			}
		}
	}

	services := DefaultServices()
	for i, want := range services {
		got := c.Services[i]
		if got.ID != want.ID || got.Mode() != want.Mode() || got.Mandatory != want.Mandatory || got.DefaultSelected != want.DefaultSelected {
			t.Fatalf("service %d changed in round trip: %+v", i, got)
		}
	}

	for i, want := range DefaultSteps() {
		if c.Steps[i] != want {
			t.Fatalf("step %d changed in round trip: %+v", i, c.Steps[i])
		}
	}
	if room := c.RoomType("lokal"); room == nil || room.Available {
		t.Fatalf("unavailable room type lost its flag: %+v", room)
	}
}

package catalog

import (
	"encoding/json"
	"fmt"
)

// Built-in catalog used when the database is empty or unreachable. Prices are
// in PLN, net.

func ptr(f float64) *float64 { return &f }

func DefaultSurfaceTypes() []SurfaceType {
	return []SurfaceType{
		{
			ID:          "gladka",
			Name:        "Gładka",
			Description: "Jednolita powierzchnia o satynowym połysku, łatwa w utrzymaniu czystości.",
			BasePrice:   200,
			PriceRanges: []PriceRange{
				{Min: 0, Max: ptr(34), Price: 5000, IsFlatRate: true},
				{Min: 35, Max: ptr(80), Price: 190},
				{Min: 81, Max: nil, Price: 175},
			},
			Image:      "/static/img/powierzchnia-gladka.jpg",
			Properties: []string{"Łatwa w czyszczeniu", "Odporna na oleje i płyny samochodowe", "Satynowy połysk"},
		},
		{
			ID:          "antyposlizgowa",
			Name:        "Antypoślizgowa",
			Description: "Powierzchnia z dodatkiem kruszywa kwarcowego, bezpieczna także na mokro.",
			BasePrice:   230,
			PriceRanges: []PriceRange{
				{Min: 0, Max: ptr(34), Price: 5800, IsFlatRate: true},
				{Min: 35, Max: nil, Price: 215},
			},
			Image:      "/static/img/powierzchnia-antyposlizgowa.jpg",
			Properties: []string{"Klasa antypoślizgowości R10", "Polecana na rampy i wjazdy", "Wysoka odporność na ścieranie"},
		},
		{
			ID:          "posypka",
			Name:        "Z posypką (chipsy)",
			Description: "Dekoracyjne płatki winylowe zatopione w żywicy, maskują drobne zabrudzenia.",
			BasePrice:   260,
			Image:       "/static/img/powierzchnia-posypka.jpg",
			Properties:  []string{"Efekt dekoracyjny", "Maskuje zabrudzenia", "Lekko antypoślizgowa"},
		},
	}
}

func DefaultColors() []ColorOption {
	return []ColorOption{
		{ID: "ral-7035", Name: "Jasnoszary", RALCode: "RAL 7035", AdditionalPrice: 0, Thumbnail: "/static/img/ral/7035.png"},
		{ID: "ral-7040", Name: "Szary okienny", RALCode: "RAL 7040", AdditionalPrice: 0, Thumbnail: "/static/img/ral/7040.png"},
		{ID: "ral-7016", Name: "Antracyt", RALCode: "RAL 7016", AdditionalPrice: 0, Thumbnail: "/static/img/ral/7016.png"},
		{ID: "ral-1015", Name: "Kość słoniowa", RALCode: "RAL 1015", AdditionalPrice: 15, Thumbnail: "/static/img/ral/1015.png"},
		{ID: "ral-5015", Name: "Błękit nieba", RALCode: "RAL 5015", AdditionalPrice: 25, Thumbnail: "/static/img/ral/5015.png"},
		{ID: "niestandardowy", Name: "Kolor niestandardowy", RALCode: "wg wzornika RAL", AdditionalPrice: 40},
	}
}

func DefaultServices() []AdditionalService {
	return []AdditionalService{
		{
			ID:           "gruntowanie",
			Name:         "Gruntowanie podłoża",
			Description:  "Warstwa gruntująca zwiększająca przyczepność żywicy.",
			Category:     "Przygotowanie podłoża",
			PricePerArea: 8,
			Mandatory:    true,
		},
		{
			ID:              "szlifowanie",
			Name:            "Szlifowanie i odpylanie betonu",
			Description:     "Usunięcie mleczka cementowego i zanieczyszczeń.",
			Category:        "Przygotowanie podłoża",
			PricePerArea:    12,
			DefaultSelected: true,
		},
		{
			ID:                "cokol",
			Name:              "Cokół żywiczny",
			Description:       "Wywinięcie żywicy na ścianę na wysokość 10 cm.",
			Category:          "Wykończenie",
			PricePerPerimeter: 45,
		},
		{
			ID:                "dylatacje",
			Name:              "Nacięcie i wypełnienie dylatacji",
			Category:          "Wykończenie",
			PricePerPerimeter: 20,
		},
		{
			ID:           "lakier-uv",
			Name:         "Lakier zabezpieczający UV",
			Description:  "Poliuretanowa warstwa chroniąca kolor przed żółknięciem.",
			Category:     "Wykończenie",
			PricePerArea: 25,
		},
		{
			ID:              "transport",
			Name:            "Dojazd i transport materiałów",
			Category:        "Logistyka",
			FixedPrice:      300,
			DefaultSelected: true,
		},
		{
			ID:             "sprzatanie",
			Name:           "Sprzątanie po pracach",
			Category:       "Logistyka",
			IncludedInBase: true,
			Mandatory:      true,
		},
	}
}

func DefaultRoomTypes() []RoomType {
	return []RoomType{
		{ID: GarageRoomTypeID, Name: "Garaż / piwnica", Description: "Posadzki odporne na ruch samochodowy i chemię.", Icon: "🚗", Available: true},
		{ID: "kuchnia", Name: "Kuchnia", Description: "Bezspoinowe posadzki łatwe w utrzymaniu.", Icon: "🍳", Available: true},
		{ID: "balkon", Name: "Balkon / taras", Description: "Systemy odporne na UV i mróz.", Icon: "🌇", Available: true},
		{ID: "mieszkanie", Name: "Salon / mieszkanie", Description: "Dekoracyjne posadzki do wnętrz.", Icon: "🛋️", Available: true},
		{ID: "lokal", Name: "Lokal usługowy", Description: "Wycena indywidualna, wkrótce w kalkulatorze.", Icon: "🏪", Available: false},
	}
}

func DefaultConcreteStates() []ConcreteState {
	return []ConcreteState{
		{ID: "nowa-wylewka", Name: "Nowa wylewka", Description: "Beton sezonowany min. 28 dni, bez powłok."},
		{ID: "stary-beton", Name: "Stary beton bez powłok", Description: "Wymaga dokładnego szlifowania.", AdditionalPrice: 10, ShowPrice: true},
		{ID: "istniejaca-powloka", Name: "Beton z istniejącą powłoką", Description: "Farba lub stara żywica do usunięcia.", AdditionalPrice: 25, ShowPrice: true},
		{ID: "uszkodzony", Name: "Beton uszkodzony", Description: "Ubytki i pęknięcia do naprawy.", AdditionalPrice: 40, ShowPrice: true},
	}
}

func DefaultSteps() []StepConfig {
	return []StepConfig{
		{StepID: StepRoomType, Label: "Rodzaj pomieszczenia", Visible: true},
		{StepID: StepConcreteState, Label: "Stan podłoża", Visible: true, CanBeHidden: true},
		{StepID: StepDimensions, Label: "Wymiary", Visible: true},
		{StepID: StepSurfaceType, Label: "Rodzaj powierzchni", Visible: true},
		{StepID: StepColor, Label: "Kolor", Visible: true, CanBeHidden: true},
		{StepID: StepAdditionalServices, Label: "Usługi dodatkowe", Visible: true, CanBeHidden: true},
	}
}

// Default returns the whole built-in catalog with every kind flagged as fallback.
func Default() *Catalog {
	return Normalize(Raw{}, nil)
}

// DefaultRaw returns the built-in catalog as raw records, the shape the
// database and import files use.
func DefaultRaw() Raw {
	return Raw{
		SurfaceTypes:   toRecords(DefaultSurfaceTypes()),
		Colors:         toRecords(DefaultColors()),
		Services:       toRecords(DefaultServices()),
		RoomTypes:      toRecords(DefaultRoomTypes()),
		ConcreteStates: toRecords(DefaultConcreteStates()),
		Steps:          toRecords(DefaultSteps()),
	}
}

func toRecords[T any](items []T) []Record {
	data, err := json.Marshal(items)
	if err != nil {
		panic(fmt.Sprintf("encode default records: %v", err))
	}
	var out []Record
	if err := json.Unmarshal(data, &out); err != nil {
		panic(fmt.Sprintf("decode default records: %v", err))
	}
	return out
}

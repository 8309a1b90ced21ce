package catalog

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Raw holds the unnormalized records of every kind.
type Raw struct {
	SurfaceTypes   []Record `json:"surfaceTypes"`
	Colors         []Record `json:"colors"`
	Services       []Record `json:"services"`
	RoomTypes      []Record `json:"roomTypes"`
	ConcreteStates []Record `json:"concreteStates"`
	Steps          []Record `json:"steps"`
}

var errMissingID = errors.New("record has no id")

// Normalize converts raw records into a Catalog. A kind whose records are empty,
// all inactive or fail to normalize is replaced by its built-in defaults and
// flagged in Catalog.Fallback.
func Normalize(raw Raw, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Catalog{Fallback: make(map[Kind]bool, len(Kinds))}

	c.SurfaceTypes, c.Fallback[KindSurfaceTypes] = normalizeKind(KindSurfaceTypes, raw.SurfaceTypes, parseSurfaceType, DefaultSurfaceTypes, logger)
	c.Colors, c.Fallback[KindColors] = normalizeKind(KindColors, raw.Colors, parseColor, DefaultColors, logger)
	c.Services, c.Fallback[KindServices] = normalizeKind(KindServices, raw.Services, parseService, DefaultServices, logger)
	c.RoomTypes, c.Fallback[KindRoomTypes] = normalizeKind(KindRoomTypes, raw.RoomTypes, parseRoomType, DefaultRoomTypes, logger)
	c.ConcreteStates, c.Fallback[KindConcreteStates] = normalizeKind(KindConcreteStates, raw.ConcreteStates, parseConcreteState, DefaultConcreteStates, logger)
	c.Steps, c.Fallback[KindSteps] = normalizeKind(KindSteps, raw.Steps, parseStepConfig, DefaultSteps, logger)

	return c
}

func normalizeKind[T any](kind Kind, records []Record, parse func(Record) (T, error), defaults func() []T, logger *zap.Logger) (out []T, fallback bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("catalog normalization panicked, using defaults",
				zap.String("kind", string(kind)),
				zap.Any("panic", r))
			out, fallback = defaults(), true
		}
	}()

	out = make([]T, 0, len(records))
	for i, rec := range records {
		if rec == nil || !isActive(rec) {
			continue
		}
		item, err := parse(rec)
		if err != nil {
			logger.Warn("skipping malformed catalog record",
				zap.String("kind", string(kind)),
				zap.Int("index", i),
				zap.Error(err))
			continue
		}
		out = append(out, item)
	}

	if len(out) == 0 {
		logger.Warn("catalog kind empty, using defaults",
			zap.String("kind", string(kind)),
			zap.Int("records", len(records)))
		return defaults(), true
	}
	return out, false
}

func requireID(rec Record, keys ...string) (string, error) {
	id := textField(rec, keys...)
	if id == "" {
		return "", errMissingID
	}
	return id, nil
}

func parseSurfaceType(rec Record) (SurfaceType, error) {
	id, err := requireID(rec, "id")
	if err != nil {
		return SurfaceType{}, err
	}
	v, _ := lookup(rec, "priceRanges", "price_ranges")
	props, _ := lookup(rec, "properties")
	return SurfaceType{
		ID:          id,
		Name:        textField(rec, "name"),
		Description: textField(rec, "description"),
		BasePrice:   numberField(rec, "basePrice", "base_price", "pricePerM2", "price_per_m2"),
		PriceRanges: priceRanges(v),
		Image:       textField(rec, "image", "imageUrl", "image_url"),
		Properties:  stringList(props),
	}, nil
}

func parseColor(rec Record) (ColorOption, error) {
	id, err := requireID(rec, "id")
	if err != nil {
		return ColorOption{}, err
	}
	return ColorOption{
		ID:              id,
		Name:            textField(rec, "name"),
		RALCode:         textField(rec, "ralCode", "ral_code", "ral"),
		AdditionalPrice: numberField(rec, "additionalPrice", "additional_price"),
		Thumbnail:       textField(rec, "thumbnail", "thumbnailUrl", "thumbnail_url"),
		Preview:         textField(rec, "preview", "previewUrl", "preview_url"),
	}, nil
}

func parseService(rec Record) (AdditionalService, error) {
	id, err := requireID(rec, "id")
	if err != nil {
		return AdditionalService{}, err
	}
	props, _ := lookup(rec, "properties")
	return AdditionalService{
		ID:                id,
		Name:              textField(rec, "name"),
		Description:       textField(rec, "description"),
		Category:          textField(rec, "category"),
		PricePerArea:      numberField(rec, "pricePerM2", "price_per_m2"),
		PricePerPerimeter: numberField(rec, "pricePerMb", "price_per_mb"),
		FixedPrice:        numberField(rec, "fixedPrice", "fixed_price"),
		IncludedInBase:    flagField(rec, false, "includedInBase", "included_in_base"),
		Mandatory:         flagField(rec, false, "mandatory", "isMandatory", "is_mandatory"),
		DefaultSelected:   flagField(rec, false, "defaultSelected", "default_selected"),
		Properties:        stringList(props),
	}, nil
}

func parseRoomType(rec Record) (RoomType, error) {
	id, err := requireID(rec, "id")
	if err != nil {
		return RoomType{}, err
	}
	return RoomType{
		ID:          id,
		Name:        textField(rec, "name"),
		Description: textField(rec, "description"),
		Icon:        textField(rec, "icon"),
		Available:   flagField(rec, true, "available", "isAvailable", "is_available"),
	}, nil
}

func parseConcreteState(rec Record) (ConcreteState, error) {
	id, err := requireID(rec, "id")
	if err != nil {
		return ConcreteState{}, err
	}
	return ConcreteState{
		ID:              id,
		Name:            textField(rec, "name"),
		Description:     textField(rec, "description"),
		AdditionalPrice: numberField(rec, "additionalPrice", "additional_price"),
		ShowPrice:       flagField(rec, false, "showPrice", "show_price"),
	}, nil
}

func parseStepConfig(rec Record) (StepConfig, error) {
	id, err := requireID(rec, "stepId", "step_id", "id")
	if err != nil {
		return StepConfig{}, fmt.Errorf("step config: %w", err)
	}
	return StepConfig{
		StepID:      id,
		Label:       textField(rec, "label", "name"),
		Visible:     flagField(rec, true, "visible", "isVisible", "is_visible"),
		CanBeHidden: flagField(rec, false, "canBeHidden", "can_be_hidden"),
	}, nil
}

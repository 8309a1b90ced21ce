package catalog

// Kind identifies one of the catalog record collections the calculator consumes.
type Kind string

const (
	KindSurfaceTypes   Kind = "surface_types"
	KindColors         Kind = "colors"
	KindServices       Kind = "additional_services"
	KindRoomTypes      Kind = "room_types"
	KindConcreteStates Kind = "concrete_states"
	KindSteps          Kind = "step_configs"
)

// Kinds lists every catalog kind in load order.
var Kinds = []Kind{KindSurfaceTypes, KindColors, KindServices, KindRoomTypes, KindConcreteStates, KindSteps}

// Step identifiers shared by step configs and the wizard.
const (
	StepRoomType           = "roomType"
	StepConcreteState      = "concreteState"
	StepDimensions         = "dimensions"
	StepSurfaceType        = "surfaceType"
	StepColor              = "color"
	StepAdditionalServices = "additionalServices"
)

// GarageRoomTypeID is the room type that asks about the concrete slab condition.
const GarageRoomTypeID = "garaz"

// PriceRange is one pricing band of a surface type. Max == nil means unbounded.
type PriceRange struct {
	Min        float64  `json:"min"`
	Max        *float64 `json:"max"`
	Price      float64  `json:"price"`
	IsFlatRate bool     `json:"isFlatRate"`
}

// Contains reports whether area falls inside [Min, Max].
func (r PriceRange) Contains(area float64) bool {
	if area < r.Min {
		return false
	}
	return r.Max == nil || area <= *r.Max
}

// SurfaceType is a selectable floor finish.
type SurfaceType struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	BasePrice   float64      `json:"basePrice"`
	PriceRanges []PriceRange `json:"priceRanges"`
	Image       string       `json:"image"`
	Properties  []string     `json:"properties"`
}

// ColorOption is a RAL color with a per square metre surcharge.
type ColorOption struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	RALCode         string  `json:"ralCode"`
	AdditionalPrice float64 `json:"additionalPrice"`
	Thumbnail       string  `json:"thumbnail"`
	Preview         string  `json:"preview"`
}

// PricingMode tells how an additional service is charged.
type PricingMode string

const (
	ModePerArea      PricingMode = "per_area"
	ModePerPerimeter PricingMode = "per_perimeter"
	ModeFixed        PricingMode = "fixed"
	ModeIncluded     PricingMode = "included"
	ModeNone         PricingMode = "none"
)

// AdditionalService is a supplementary work item. A zero price field means the
// service is not charged that way.
type AdditionalService struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Category          string   `json:"category"`
	PricePerArea      float64  `json:"pricePerM2"`
	PricePerPerimeter float64  `json:"pricePerMb"`
	FixedPrice        float64  `json:"fixedPrice"`
	IncludedInBase    bool     `json:"includedInBase"`
	Mandatory         bool     `json:"mandatory"`
	DefaultSelected   bool     `json:"defaultSelected"`
	Properties        []string `json:"properties"`
}

// Mode resolves the pricing mode with the same precedence the pricing engine uses.
func (s AdditionalService) Mode() PricingMode {
	switch {
	case s.IncludedInBase:
		return ModeIncluded
	case s.PricePerArea != 0:
		return ModePerArea
	case s.PricePerPerimeter != 0:
		return ModePerPerimeter
	case s.FixedPrice != 0:
		return ModeFixed
	default:
		return ModeNone
	}
}

// RoomType is the kind of space being floored.
type RoomType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Available   bool   `json:"available"`
}

// ConcreteState describes the condition of the existing slab.
type ConcreteState struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	AdditionalPrice float64 `json:"additionalPrice"`
	ShowPrice       bool    `json:"showPrice"`
}

// StepConfig toggles an optional wizard step.
type StepConfig struct {
	StepID      string `json:"stepId"`
	Label       string `json:"label"`
	Visible     bool   `json:"visible"`
	CanBeHidden bool   `json:"canBeHidden"`
}

// Shown reports whether the step is displayed. Steps that cannot be hidden are
// always shown.
func (c StepConfig) Shown() bool {
	return !c.CanBeHidden || c.Visible
}

// Catalog is the normalized, read-only view of all catalog kinds.
type Catalog struct {
	SurfaceTypes   []SurfaceType       `json:"surfaceTypes"`
	Colors         []ColorOption       `json:"colors"`
	Services       []AdditionalService `json:"services"`
	RoomTypes      []RoomType          `json:"roomTypes"`
	ConcreteStates []ConcreteState     `json:"concreteStates"`
	Steps          []StepConfig        `json:"steps"`
	Fallback       map[Kind]bool       `json:"fallback"`
}

// UsingFallback reports whether any kind was replaced by built-in defaults.
func (c *Catalog) UsingFallback() bool {
	for _, used := range c.Fallback {
		if used {
			return true
		}
	}
	return false
}

func (c *Catalog) SurfaceType(id string) *SurfaceType {
	for i := range c.SurfaceTypes {
		if c.SurfaceTypes[i].ID == id {
			return &c.SurfaceTypes[i]
		}
	}
	return nil
}

func (c *Catalog) Color(id string) *ColorOption {
	for i := range c.Colors {
		if c.Colors[i].ID == id {
			return &c.Colors[i]
		}
	}
	return nil
}

func (c *Catalog) Service(id string) *AdditionalService {
	for i := range c.Services {
		if c.Services[i].ID == id {
			return &c.Services[i]
		}
	}
	return nil
}

func (c *Catalog) RoomType(id string) *RoomType {
	for i := range c.RoomTypes {
		if c.RoomTypes[i].ID == id {
			return &c.RoomTypes[i]
		}
	}
	return nil
}

func (c *Catalog) ConcreteState(id string) *ConcreteState {
	for i := range c.ConcreteStates {
		if c.ConcreteStates[i].ID == id {
			return &c.ConcreteStates[i]
		}
	}
	return nil
}

// StepShown reports whether the optional step is enabled by its config. A step
// without a config entry is shown.
func (c *Catalog) StepShown(stepID string) bool {
	for _, s := range c.Steps {
		if s.StepID == stepID {
			return s.Shown()
		}
	}
	return true
}

package calculator

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/pricing"
)

var (
	// ErrStepLocked is returned when input targets a step that is absent or
	// whose predecessors are not complete.
	ErrStepLocked = errors.New("step is locked")
	// ErrUnknownOption is returned for ids missing from the catalog.
	ErrUnknownOption = errors.New("unknown option")
	// ErrOptionUnavailable is returned for room types shown as unavailable.
	ErrOptionUnavailable = errors.New("option unavailable")
	// ErrNotExportable is returned when the selection cannot be quoted yet.
	ErrNotExportable = errors.New("selection is not complete")
	// ErrExportInProgress is returned for a second export while one is running.
	ErrExportInProgress = errors.New("export already in progress")
)

// Selection is the user input of one calculator visit.
type Selection struct {
	RoomTypeID      string         `json:"roomTypeId"`
	ConcreteStateID string         `json:"concreteStateId"`
	Dimensions      DimensionInput `json:"dimensions"`
	SurfaceTypeID   string         `json:"surfaceTypeId"`
	ColorID         string         `json:"colorId"`
	ServiceIDs      []string       `json:"serviceIds"`
	Perimeter       string         `json:"perimeter"`
}

// ExportState is the quote export lifecycle as seen by the UI.
type ExportState string

const (
	ExportIdle       ExportState = "idle"
	ExportReady      ExportState = "exportable"
	ExportInProgress ExportState = "exporting"
)

// Snapshot is the selection together with every derived value.
type Snapshot struct {
	Selection     Selection       `json:"selection"`
	Dimensions    DimensionResult `json:"dimensions"`
	Perimeter     float64         `json:"perimeterValue"`
	Steps         Gating          `json:"steps"`
	Price         pricing.Result  `json:"price"`
	Exportable    bool            `json:"exportable"`
	ExportState   ExportState     `json:"exportState"`
	ExportError   string          `json:"exportError,omitempty"`
	UsingFallback bool            `json:"usingFallback"`
	Generation    uint64          `json:"generation"`

	// PerimeterError is set for a perimeter that was entered but rejected.
	PerimeterError *ValidationError `json:"perimeterError,omitempty"`

	RoomType      *catalog.RoomType           `json:"roomType,omitempty"`
	ConcreteState *catalog.ConcreteState      `json:"concreteState,omitempty"`
	SurfaceType   *catalog.SurfaceType        `json:"surfaceType,omitempty"`
	Color         *catalog.ColorOption        `json:"color,omitempty"`
	Services      []catalog.AdditionalService `json:"services"`
}

// ExportTicket ties an export to the selection generation it started from.
type ExportTicket struct {
	generation uint64
	Snapshot   Snapshot
}

// Wizard owns one Selection and keeps its derived state current. Every setter
// recomputes synchronously. It is safe for concurrent use.
type Wizard struct {
	mu      sync.Mutex
	catalog *catalog.Catalog
	bounds  Bounds

	sel          Selection
	services     map[string]bool
	concreteAuto bool
	colorAuto    bool

	dims    DimensionResult
	gating  Gating
	derived Snapshot

	generation uint64
	exporting  bool
	exportErr  string
}

// NewWizard starts a fresh selection over cat.
func NewWizard(cat *catalog.Catalog, bounds Bounds) *Wizard {
	w := &Wizard{catalog: cat, bounds: bounds}
	w.reset()
	return w
}

func (w *Wizard) Catalog() *catalog.Catalog { return w.catalog }

// Snapshot returns the current derived state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.derived
}

func (w *Wizard) SelectRoomType(id string) (Snapshot, error) {
	return w.apply(StepRoomType, func() error {
		room := w.catalog.RoomType(id)
		if room == nil {
			return fmt.Errorf("room type %q: %w", id, ErrUnknownOption)
		}
		if !room.Available {
			return fmt.Errorf("room type %q: %w", id, ErrOptionUnavailable)
		}
		w.sel.RoomTypeID = id
		return nil
	})
}

func (w *Wizard) SelectConcreteState(id string) (Snapshot, error) {
	return w.apply(StepConcreteState, func() error {
		if w.catalog.ConcreteState(id) == nil {
			return fmt.Errorf("concrete state %q: %w", id, ErrUnknownOption)
		}
		w.sel.ConcreteStateID = id
		w.concreteAuto = false
		return nil
	})
}

func (w *Wizard) SetDimensionMode(mode DimensionMode) (Snapshot, error) {
	return w.apply(StepDimensions, func() error {
		if mode != ModePaired && mode != ModeDirect {
			return fmt.Errorf("dimension mode %q: %w", mode, ErrUnknownOption)
		}
		w.sel.Dimensions.Mode = mode
		return nil
	})
}

func (w *Wizard) SetLength(raw string) (Snapshot, error) {
	return w.apply(StepDimensions, func() error {
		w.sel.Dimensions.Length = raw
		return nil
	})
}

func (w *Wizard) SetWidth(raw string) (Snapshot, error) {
	return w.apply(StepDimensions, func() error {
		w.sel.Dimensions.Width = raw
		return nil
	})
}

func (w *Wizard) SetArea(raw string) (Snapshot, error) {
	return w.apply(StepDimensions, func() error {
		w.sel.Dimensions.Area = raw
		return nil
	})
}

func (w *Wizard) SelectSurfaceType(id string) (Snapshot, error) {
	return w.apply(StepSurfaceType, func() error {
		if w.catalog.SurfaceType(id) == nil {
			return fmt.Errorf("surface type %q: %w", id, ErrUnknownOption)
		}
		w.sel.SurfaceTypeID = id
		return nil
	})
}

func (w *Wizard) SelectColor(id string) (Snapshot, error) {
	return w.apply(StepColor, func() error {
		if w.catalog.Color(id) == nil {
			return fmt.Errorf("color %q: %w", id, ErrUnknownOption)
		}
		w.sel.ColorID = id
		w.colorAuto = false
		return nil
	})
}

// ToggleService flips a service. Mandatory services stay selected.
func (w *Wizard) ToggleService(id string) (Snapshot, error) {
	return w.apply(StepAdditionalServices, func() error {
		svc := w.catalog.Service(id)
		if svc == nil {
			return fmt.Errorf("service %q: %w", id, ErrUnknownOption)
		}
		if svc.Mandatory {
			w.services[id] = true
			return nil
		}
		w.services[id] = !w.services[id]
		return nil
	})
}

// SetPerimeter stores the perimeter used by per running metre services. Blank
// input means no perimeter; invalid input is reported in the snapshot and
// blocks the export.
func (w *Wizard) SetPerimeter(raw string) (Snapshot, error) {
	return w.apply(StepAdditionalServices, func() error {
		w.sel.Perimeter = raw
		return nil
	})
}

// Reset discards the selection. Any export in flight becomes stale.
func (w *Wizard) Reset() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reset()
	return w.derived
}

// BeginExport freezes the current snapshot for export. Only one export runs at
// a time.
func (w *Wizard) BeginExport() (ExportTicket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.exporting {
		return ExportTicket{}, ErrExportInProgress
	}
	if !w.derived.Exportable {
		return ExportTicket{}, ErrNotExportable
	}
	w.exporting = true
	w.exportErr = ""
	w.refreshExportState()
	return ExportTicket{generation: w.generation, Snapshot: w.derived}, nil
}

// FinishExport applies the export outcome. Success resets the selection; a
// failure keeps it and records the message. Results for a selection that was
// reset meanwhile are dropped and applied is false.
func (w *Wizard) FinishExport(t ExportTicket, exportErr error) (applied bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t.generation != w.generation {
		return false
	}
	w.exporting = false
	if exportErr != nil {
		w.exportErr = exportErr.Error()
		w.refreshExportState()
		return true
	}
	w.reset()
	return true
}

// apply runs a guarded mutation: the target step must be unlocked.
func (w *Wizard) apply(step Step, mutate func() error) (Snapshot, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.gating.Unlocked(step) {
		return w.derived, fmt.Errorf("%s: %w", step, ErrStepLocked)
	}
	if err := mutate(); err != nil {
		return w.derived, err
	}
	w.recompute()
	return w.derived, nil
}

func (w *Wizard) reset() {
	w.generation++
	w.sel = Selection{Dimensions: DimensionInput{Mode: ModePaired}}
	w.services = make(map[string]bool)
	for _, svc := range w.catalog.Services {
		if svc.Mandatory || svc.DefaultSelected {
			w.services[svc.ID] = true
		}
	}
	w.concreteAuto = false
	w.colorAuto = false
	w.exporting = false
	w.exportErr = ""
	w.recompute()
}

// recompute is the derivation pipeline: dimensions, implicit defaults for
// absent steps, gating, price.
func (w *Wizard) recompute() {
	w.dims = ValidateDimensions(w.sel.Dimensions, w.bounds)

	active := ActiveSteps(w.catalog, &w.sel)
	w.resolveConcreteDefault(contains(active, StepConcreteState))

	w.gating = computeGating(w.catalog, &w.sel, w.dims)
	if w.resolveColorDefault(contains(active, StepColor)) {
		w.gating = computeGating(w.catalog, &w.sel, w.dims)
	}

	servicesShown := contains(active, StepAdditionalServices)
	w.sel.ServiceIDs = make([]string, 0, len(w.services))
	selected := make([]catalog.AdditionalService, 0, len(w.services))
	for _, svc := range w.catalog.Services {
		if !w.services[svc.ID] {
			continue
		}
		if !servicesShown && !svc.Mandatory {
			continue
		}
		w.sel.ServiceIDs = append(w.sel.ServiceIDs, svc.ID)
		selected = append(selected, svc)
	}

	perimeter, perimeterErr := ValidatePerimeter(w.sel.Perimeter, w.bounds)

	snap := Snapshot{
		Selection:     w.sel,
		Dimensions:    w.dims,
		Perimeter:     perimeter,
		Steps:         w.gating,
		UsingFallback: w.catalog.UsingFallback(),
		Generation:    w.generation,
		RoomType:      copyOf(w.catalog.RoomType(w.sel.RoomTypeID)),
		ConcreteState: copyOf(w.catalog.ConcreteState(w.sel.ConcreteStateID)),
		SurfaceType:   copyOf(w.catalog.SurfaceType(w.sel.SurfaceTypeID)),
		Color:         copyOf(w.catalog.Color(w.sel.ColorID)),
		Services:      selected,
	}
	snap.PerimeterError = perimeterErr
	snap.Price = pricing.Calculate(pricing.Input{
		Area:       w.dims.Area,
		Surface:    snap.SurfaceType,
		Color:      snap.Color,
		Concrete:   snap.ConcreteState,
		ServiceIDs: w.sel.ServiceIDs,
		Perimeter:  perimeter,
		Services:   w.catalog.Services,
	})
	snap.Exportable = snap.Price.Ready && w.gating.Done && perimeterErr == nil
	w.derived = snap
	w.refreshExportState()
}

// An absent concrete step always means the first entry; when the step appears
// again an implicit choice is cleared so the user has to pick.
func (w *Wizard) resolveConcreteDefault(present bool) {
	if present {
		if w.concreteAuto {
			w.sel.ConcreteStateID = ""
			w.concreteAuto = false
		}
		return
	}
	if len(w.catalog.ConcreteStates) == 0 {
		w.sel.ConcreteStateID = ""
		return
	}
	w.sel.ConcreteStateID = w.catalog.ConcreteStates[0].ID
	w.concreteAuto = true
}

// An absent color step picks the first color once dimensions and surface are
// complete. Reports whether the selection changed.
func (w *Wizard) resolveColorDefault(present bool) bool {
	if present {
		if w.colorAuto {
			w.sel.ColorID = ""
			w.colorAuto = false
			return true
		}
		return false
	}
	if w.sel.ColorID != "" || len(w.catalog.Colors) == 0 {
		return false
	}
	if !w.gating.Complete(StepDimensions) || !w.gating.Complete(StepSurfaceType) {
		return false
	}
	w.sel.ColorID = w.catalog.Colors[0].ID
	w.colorAuto = true
	return true
}

func (w *Wizard) refreshExportState() {
	switch {
	case w.exporting:
		w.derived.ExportState = ExportInProgress
	case w.derived.Exportable:
		w.derived.ExportState = ExportReady
	default:
		w.derived.ExportState = ExportIdle
	}
	w.derived.ExportError = w.exportErr
}

func contains(list []Step, id Step) bool {
	for _, s := range list {
		if s == id {
			return true
		}
	}
	return false
}

func copyOf[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

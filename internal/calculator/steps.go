package calculator

import "github.com/Simplici0/posadzki/internal/catalog"

// Step identifies a wizard step.
type Step string

const (
	StepRoomType           Step = catalog.StepRoomType
	StepConcreteState      Step = catalog.StepConcreteState
	StepDimensions         Step = catalog.StepDimensions
	StepSurfaceType        Step = catalog.StepSurfaceType
	StepColor              Step = catalog.StepColor
	StepAdditionalServices Step = catalog.StepAdditionalServices
)

var defaultLabels = map[Step]string{
	StepRoomType:           "Rodzaj pomieszczenia",
	StepConcreteState:      "Stan podłoża",
	StepDimensions:         "Wymiary",
	StepSurfaceType:        "Rodzaj powierzchni",
	StepColor:              "Kolor",
	StepAdditionalServices: "Usługi dodatkowe",
}

// gateInput is everything the predicates may look at.
type gateInput struct {
	catalog *catalog.Catalog
	sel     *Selection
	dims    DimensionResult
}

type stepDescriptor struct {
	id      Step
	present func(in gateInput) bool
	// complete is only consulted for present steps; done holds the completion of
	// every earlier step, absent ones included.
	complete func(in gateInput, done map[Step]bool) bool
}

func always(gateInput) bool { return true }

// steps is the full ordered step list; optional entries drop out through present.
var steps = []stepDescriptor{
	{
		id:      StepRoomType,
		present: always,
		complete: func(in gateInput, _ map[Step]bool) bool {
			return in.sel.RoomTypeID != ""
		},
	},
	{
		id: StepConcreteState,
		present: func(in gateInput) bool {
			return in.sel.RoomTypeID == catalog.GarageRoomTypeID && in.catalog.StepShown(catalog.StepConcreteState)
		},
		complete: func(in gateInput, _ map[Step]bool) bool {
			return in.sel.ConcreteStateID != ""
		},
	},
	{
		id:      StepDimensions,
		present: always,
		complete: func(in gateInput, done map[Step]bool) bool {
			return done[StepRoomType] && done[StepConcreteState] && in.dims.Valid()
		},
	},
	{
		id:      StepSurfaceType,
		present: always,
		complete: func(in gateInput, done map[Step]bool) bool {
			return done[StepDimensions] && in.sel.SurfaceTypeID != ""
		},
	},
	{
		id: StepColor,
		present: func(in gateInput) bool {
			return in.catalog.StepShown(catalog.StepColor)
		},
		complete: func(in gateInput, done map[Step]bool) bool {
			return done[StepDimensions] && done[StepSurfaceType] && in.sel.ColorID != ""
		},
	},
	{
		id: StepAdditionalServices,
		present: func(in gateInput) bool {
			return in.catalog.StepShown(catalog.StepAdditionalServices)
		},
		// Reaching the services step is enough; it never blocks the summary.
		complete: func(gateInput, map[Step]bool) bool { return true },
	},
}

// StepStatus is the gating view of one active step.
type StepStatus struct {
	ID       Step   `json:"id"`
	Label    string `json:"label"`
	Number   int    `json:"number"`
	Complete bool   `json:"complete"`
	Unlocked bool   `json:"unlocked"`
	Current  bool   `json:"current"`
}

// Gating is the computed state of the active step list. Current is the 1-based
// number of the first incomplete step, or len(Steps)+1 once all are complete.
type Gating struct {
	Steps   []StepStatus `json:"steps"`
	Current int          `json:"current"`
	Done    bool         `json:"done"`
}

func (g Gating) status(id Step) (StepStatus, bool) {
	for _, s := range g.Steps {
		if s.ID == id {
			return s, true
		}
	}
	return StepStatus{}, false
}

// Present reports whether id is in the active list.
func (g Gating) Present(id Step) bool {
	_, ok := g.status(id)
	return ok
}

// Unlocked reports whether id is active and every step before it is complete.
func (g Gating) Unlocked(id Step) bool {
	s, ok := g.status(id)
	return ok && s.Unlocked
}

// Complete reports completion; absent steps count as complete.
func (g Gating) Complete(id Step) bool {
	s, ok := g.status(id)
	return !ok || s.Complete
}

// ActiveSteps returns the ordered ids of the steps present for the selection.
func ActiveSteps(cat *catalog.Catalog, sel *Selection) []Step {
	in := gateInput{catalog: cat, sel: sel}
	out := make([]Step, 0, len(steps))
	for _, d := range steps {
		if d.present(in) {
			out = append(out, d.id)
		}
	}
	return out
}

func computeGating(cat *catalog.Catalog, sel *Selection, dims DimensionResult) Gating {
	in := gateInput{catalog: cat, sel: sel, dims: dims}
	done := make(map[Step]bool, len(steps))

	g := Gating{Steps: make([]StepStatus, 0, len(steps))}
	for _, d := range steps {
		if !d.present(in) {
			done[d.id] = true
			continue
		}
		complete := d.complete(in, done)
		done[d.id] = complete
		g.Steps = append(g.Steps, StepStatus{
			ID:       d.id,
			Label:    stepLabel(cat, d.id),
			Number:   len(g.Steps) + 1,
			Complete: complete,
		})
	}

	g.Current = len(g.Steps) + 1
	unlocked := true
	for i := range g.Steps {
		g.Steps[i].Unlocked = unlocked
		if !g.Steps[i].Complete && g.Current > len(g.Steps) {
			g.Current = i + 1
			g.Steps[i].Current = true
		}
		unlocked = unlocked && g.Steps[i].Complete
	}
	g.Done = g.Current > len(g.Steps)
	return g
}

func stepLabel(cat *catalog.Catalog, id Step) string {
	for _, s := range cat.Steps {
		if s.StepID == string(id) && s.Label != "" {
			return s.Label
		}
	}
	return defaultLabels[id]
}

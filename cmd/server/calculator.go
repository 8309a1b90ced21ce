package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/mailer"
	"github.com/Simplici0/posadzki/internal/quote"
)

type calculatorViewData struct {
	baseViewData
	Snap         calculator.Snapshot
	Catalog      *catalog.Catalog
	Selected     map[string]bool
	EmailEnabled bool
}

type snapshotPayload struct {
	Snapshot     calculator.Snapshot `json:"snapshot"`
	Catalog      *catalog.Catalog    `json:"catalog"`
	EmailEnabled bool                `json:"emailEnabled"`
	Error        string              `json:"error,omitempty"`
	Message      string              `json:"message,omitempty"`
}

func (s *server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	wiz := s.wizards.wizard(w, r)
	if wantsJSON(r) {
		s.writeSnapshot(w, http.StatusOK, wiz, wiz.Snapshot(), "", "")
		return
	}
	s.renderCalculator(w, http.StatusOK, wiz, wiz.Snapshot(), baseViewData{
		ErrorMessage:   r.URL.Query().Get("error"),
		SuccessMessage: r.URL.Query().Get("success"),
	})
}

func (s *server) handleSnapshotJSON(w http.ResponseWriter, r *http.Request) {
	wiz := s.wizards.wizard(w, r)
	s.writeSnapshot(w, http.StatusOK, wiz, wiz.Snapshot(), "", "")
}

func (s *server) handleSelectRoom(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.SelectRoomType(r.FormValue("room_type"))
	})
}

func (s *server) handleSelectConcrete(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.SelectConcreteState(r.FormValue("concrete_state"))
	})
}

func (s *server) handleDimensionMode(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.SetDimensionMode(calculator.DimensionMode(r.FormValue("mode")))
	})
}

// handleDimensions applies whichever of length, width and area the form
// carries. Validation problems are part of the snapshot, not errors.
func (s *server) handleDimensions(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		snap := wiz.Snapshot()
		setters := []struct {
			field string
			set   func(string) (calculator.Snapshot, error)
		}{
			{calculator.FieldLength, wiz.SetLength},
			{calculator.FieldWidth, wiz.SetWidth},
			{calculator.FieldArea, wiz.SetArea},
		}
		for _, st := range setters {
			if _, ok := r.Form[st.field]; !ok {
				continue
			}
			var err error
			if snap, err = st.set(r.FormValue(st.field)); err != nil {
				return snap, err
			}
		}
		return snap, nil
	})
}

func (s *server) handleSelectSurface(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.SelectSurfaceType(r.FormValue("surface_type"))
	})
}

func (s *server) handleSelectColor(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.SelectColor(r.FormValue("color"))
	})
}

func (s *server) handleToggleService(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.ToggleService(r.FormValue("service"))
	})
}

func (s *server) handlePerimeter(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.SetPerimeter(r.FormValue("perimeter"))
	})
}

func (s *server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.applyWizard(w, r, func(wiz *calculator.Wizard) (calculator.Snapshot, error) {
		return wiz.Reset(), nil
	})
}

// applyWizard runs one wizard action. HTML clients are redirected back to the
// wizard on success; failures re-render it with the error status.
func (s *server) applyWizard(w http.ResponseWriter, r *http.Request, action func(*calculator.Wizard) (calculator.Snapshot, error)) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	wiz := s.wizards.wizard(w, r)
	snap, err := action(wiz)
	if err != nil {
		s.respondError(w, r, wiz, err)
		return
	}
	if wantsJSON(r) {
		s.writeSnapshot(w, http.StatusOK, wiz, snap, "", "")
		return
	}
	http.Redirect(w, r, "/kalkulator", http.StatusSeeOther)
}

func (s *server) respondError(w http.ResponseWriter, r *http.Request, wiz *calculator.Wizard, err error) {
	status := statusFor(err)
	message := userMessage(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("calculator request failed", zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		s.logger.Debug("calculator request rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	if wantsJSON(r) {
		s.writeSnapshot(w, status, wiz, wiz.Snapshot(), message, "")
		return
	}
	s.renderCalculator(w, status, wiz, wiz.Snapshot(), baseViewData{ErrorMessage: message})
}

func (s *server) renderCalculator(w http.ResponseWriter, status int, wiz *calculator.Wizard, snap calculator.Snapshot, base baseViewData) {
	selected := make(map[string]bool, len(snap.Selection.ServiceIDs))
	for _, id := range snap.Selection.ServiceIDs {
		selected[id] = true
	}
	s.renderTemplate(w, status, "calculator.html", calculatorViewData{
		baseViewData: base,
		Snap:         snap,
		Catalog:      wiz.Catalog(),
		Selected:     selected,
		EmailEnabled: s.exporter.EmailEnabled(),
	})
}

func (s *server) writeSnapshot(w http.ResponseWriter, status int, wiz *calculator.Wizard, snap calculator.Snapshot, errMessage, message string) {
	s.writeJSON(w, status, snapshotPayload{
		Snapshot:     snap,
		Catalog:      wiz.Catalog(),
		EmailEnabled: s.exporter.EmailEnabled(),
		Error:        errMessage,
		Message:      message,
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		s.logger.Error("encode json response", zap.Error(err))
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func statusFor(err error) int {
	var de *mailer.DeliveryError
	switch {
	case errors.Is(err, calculator.ErrStepLocked), errors.Is(err, calculator.ErrExportInProgress):
		return http.StatusConflict
	case errors.Is(err, calculator.ErrNotExportable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, calculator.ErrUnknownOption),
		errors.Is(err, calculator.ErrOptionUnavailable),
		errors.Is(err, mailer.ErrInvalidRecipient):
		return http.StatusBadRequest
	case errors.As(err, &de):
		return http.StatusBadGateway
	case errors.Is(err, quote.ErrEmailDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func userMessage(err error) string {
	var de *mailer.DeliveryError
	switch {
	case errors.Is(err, calculator.ErrStepLocked):
		return "Uzupełnij najpierw poprzednie kroki."
	case errors.Is(err, calculator.ErrExportInProgress):
		return "Wycena jest właśnie przygotowywana."
	case errors.Is(err, calculator.ErrNotExportable):
		return "Wycena nie jest jeszcze kompletna."
	case errors.Is(err, calculator.ErrUnknownOption):
		return "Wybrana opcja nie występuje w cenniku."
	case errors.Is(err, calculator.ErrOptionUnavailable):
		return "Ta opcja będzie dostępna wkrótce."
	case errors.Is(err, quote.ErrEmailDisabled):
		return "Wysyłka wyceny e-mailem jest obecnie niedostępna."
	case errors.Is(err, mailer.ErrInvalidRecipient), errors.As(err, &de):
		return mailer.UserMessage(err)
	default:
		return "Wystąpił błąd. Spróbuj ponownie."
	}
}

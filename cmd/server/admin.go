package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/quote"
	"github.com/Simplici0/posadzki/internal/store"
)

type quotesViewData struct {
	baseViewData
	Query  string
	Quotes []store.QuoteListItem
}

type stepsViewData struct {
	baseViewData
	Steps []store.StepConfig
}

func (s *server) handleAdminQuotes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	quotes, err := s.store.ListQuotes(r.Context(), query)
	if err != nil {
		s.logger.Error("list quotes", zap.Error(err))
		http.Error(w, "failed to load quotes", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_quotes.html", quotesViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Query:  query,
		Quotes: quotes,
	})
}

func (s *server) handleAdminQuoteText(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return
	}

	stored, err := s.store.GetQuote(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.logger.Error("load quote", zap.String("id", id), zap.Error(err))
		http.Error(w, "failed to load quote", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Kanał: %s\n", stored.Channel)
	if stored.Email != "" {
		fmt.Fprintf(w, "Klient: %s\n", stored.Email)
	}
	fmt.Fprintf(w, "Zapisano: %s\n\n", stored.CreatedAt.Format("2006-01-02 15:04"))
	_, _ = w.Write([]byte(quote.RenderText(stored.Document)))
}

func (s *server) handleAdminSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := s.store.Steps(r.Context())
	if err != nil {
		s.logger.Error("list steps", zap.Error(err))
		http.Error(w, "failed to load steps", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, http.StatusOK, "admin_steps.html", stepsViewData{
		baseViewData: baseViewData{
			ErrorMessage:   r.URL.Query().Get("error"),
			SuccessMessage: r.URL.Query().Get("success"),
		},
		Steps: steps,
	})
}

// handleAdminStepToggle changes step visibility for new calculator visits.
// Wizards already in progress keep the catalog they started with.
func (s *server) handleAdminStepToggle(w http.ResponseWriter, r *http.Request) {
	stepID := chi.URLParam(r, "step")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	visible := r.FormValue("visible") == "1"
	err := s.store.SetStepVisible(r.Context(), stepID, visible)
	if errors.Is(err, store.ErrNotFound) {
		redirectWithMessage(w, r, "/admin/steps", "error", "Tego kroku nie można ukryć.")
		return
	}
	if err != nil {
		s.logger.Error("update step visibility", zap.String("step", stepID), zap.Error(err))
		http.Error(w, "failed to update step", http.StatusInternalServerError)
		return
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(r.Context()); err != nil {
			s.logger.Warn("invalidate catalog cache", zap.Error(err))
		}
	}
	s.logger.Info("step visibility changed", zap.String("step", stepID), zap.Bool("visible", visible))
	redirectWithMessage(w, r, "/admin/steps", "success", "Zapisano ustawienia kroku.")
}

package main

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/catalog"
	"github.com/Simplici0/posadzki/internal/pricing"
	"github.com/Simplici0/posadzki/internal/quote"
	"github.com/Simplici0/posadzki/internal/store"
	"github.com/Simplici0/posadzki/web"
)

// cacheInvalidator drops cached catalog records after an admin change.
type cacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

type server struct {
	logger   *zap.Logger
	store    *store.Store
	cache    cacheInvalidator
	exporter *quote.Exporter
	wizards  *wizardRegistry
	auth     *authService
	timeout  time.Duration
}

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.Static()))))
	r.Get("/", s.handleHome)
	r.Get("/healthz", s.handleHealth)

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLoginSubmit)
	r.Post("/logout", s.handleLogout)

	r.Get("/api/kalkulator", s.handleSnapshotJSON)
	r.Route("/kalkulator", func(r chi.Router) {
		r.Get("/", s.handleCalculator)
		r.Post("/room", s.handleSelectRoom)
		r.Post("/concrete", s.handleSelectConcrete)
		r.Post("/mode", s.handleDimensionMode)
		r.Post("/dimensions", s.handleDimensions)
		r.Post("/surface", s.handleSelectSurface)
		r.Post("/color", s.handleSelectColor)
		r.Post("/service", s.handleToggleService)
		r.Post("/perimeter", s.handlePerimeter)
		r.Post("/reset", s.handleReset)
		r.Post("/quote.pdf", s.handleExportDownload(quote.ChannelPDF))
		r.Post("/quote.xlsx", s.handleExportDownload(quote.ChannelXLSX))
		r.Post("/quote/email", s.handleExportEmail)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/quotes", s.handleAdminQuotes)
		r.Get("/quotes/{id}/text", s.handleAdminQuoteText)
		r.Get("/steps", s.handleAdminSteps)
		r.Post("/steps/{step}", s.handleAdminStepToggle)
	})
	return r
}

func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, http.StatusOK, "home.html", baseViewData{})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DB().PingContext(r.Context()); err != nil {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

var templateFuncs = template.FuncMap{
	"money": quote.FormatMoney,
	"qty":   quote.FormatQuantity,
	"join":  strings.Join,
	"serviceRate": func(svc catalog.AdditionalService) string {
		switch svc.Mode() {
		case catalog.ModeIncluded:
			return "w cenie"
		case catalog.ModePerArea:
			return quote.FormatMoney(svc.PricePerArea) + "/" + pricing.UnitSquareMetre
		case catalog.ModePerPerimeter:
			return quote.FormatMoney(svc.PricePerPerimeter) + "/" + pricing.UnitRunningMetre
		case catalog.ModeFixed:
			return quote.FormatMoney(svc.FixedPrice)
		default:
			return ""
		}
	},
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(web.Templates,
		"templates/layout.html",
		"templates/"+page,
	)
	if err != nil {
		s.logger.Error("parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf strings.Builder
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(buf.String()))
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.logger.Info("http request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}

func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, key, message string) {
	target := fmt.Sprintf("%s?%s=%s", path, key, url.QueryEscape(message))
	http.Redirect(w, r, target, http.StatusSeeOther)
}

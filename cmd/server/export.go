package main

import (
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/Simplici0/posadzki/internal/quote"
)

func (s *server) handleExportDownload(channel quote.Channel) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.export(w, r, channel, "")
	}
}

func (s *server) handleExportEmail(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	s.export(w, r, quote.ChannelEmail, r.FormValue("email"))
}

// export freezes the wizard, produces the quote and applies the outcome. A
// success resets the wizard; a failure keeps the selection with the message.
func (s *server) export(w http.ResponseWriter, r *http.Request, channel quote.Channel, recipient string) {
	wiz := s.wizards.wizard(w, r)
	ticket, err := wiz.BeginExport()
	if err != nil {
		s.respondError(w, r, wiz, err)
		return
	}

	res, err := s.exporter.Export(r.Context(), ticket.Snapshot, channel, recipient)
	if err != nil {
		wiz.FinishExport(ticket, errors.New(userMessage(err)))
		s.respondError(w, r, wiz, err)
		return
	}
	wiz.FinishExport(ticket, nil)

	if channel == quote.ChannelEmail {
		message := "Wycena " + res.Document.Number + " została wysłana."
		if wantsJSON(r) {
			s.writeSnapshot(w, http.StatusOK, wiz, wiz.Snapshot(), "", message)
			return
		}
		redirectWithMessage(w, r, "/kalkulator", "success", message)
		return
	}

	w.Header().Set("Content-Type", res.File.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.File.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.File.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.File.Data)
}

package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/printquote/internal/submission"
)

type quotesView struct {
	Query  string                `json:"query"`
	Quotes []submission.ListItem `json:"quotes"`
}

func (s *server) handleQuotesList(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	quotes, err := s.submissions.List(r.Context(), query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, quotesView{Query: query, Quotes: quotes})
}

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, "invalid quote id", http.StatusBadRequest)
		return
	}

	sub, err := s.submissions.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(submission.RenderText(sub)))
}

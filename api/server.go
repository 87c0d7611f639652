package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/legisdesk/bill-registry/internal/analytics"
	"github.com/legisdesk/bill-registry/internal/appstate"
	"github.com/legisdesk/bill-registry/internal/catalog"
	"github.com/legisdesk/bill-registry/internal/chat"
	"github.com/legisdesk/bill-registry/internal/elasticsearch"
	"github.com/legisdesk/bill-registry/internal/models"
	"github.com/legisdesk/bill-registry/internal/session"
	"github.com/legisdesk/bill-registry/internal/store"
	"github.com/legisdesk/bill-registry/internal/translate"
)

type billTranslator interface {
	Translate(ctx context.Context, bill models.Bill, lang string) translate.Result
}

type billSearcher interface {
	SearchBills(ctx context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error)
}

type server struct {
	log         *slog.Logger
	store       *store.Store
	translator  billTranslator
	sessions    *session.Registry
	search      billSearcher
	health      func(ctx context.Context) error
	defaultPage int
	maxPage     int
}

type errorResponse struct {
	Error string `json:"error"`
}

type listResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

type sessionResponse struct {
	ID    string         `json:"id"`
	State appstate.State `json:"state"`
}

type chatRequest struct {
	Text string `json:"text"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/bills", func(r chi.Router) {
		r.Get("/", s.handleBills)
		r.Get("/{id}", s.handleBill)
		r.Get("/{id}/translation", s.handleTranslation)
	})
	r.Get("/search", s.handleSearch)
	r.Get("/news", s.handleNews)

	r.Route("/analytics", func(r chi.Router) {
		r.Get("/status", s.handleStatusCounts)
		r.Get("/ministries", s.handleMinistryCounts)
		r.Get("/states", s.handleStateShares)
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/events", s.handleSessionEvent)
		r.Post("/{id}/chat", s.handleSessionChat)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health != nil {
		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}

	bills, news := s.store.Len()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"bills":    bills,
		"news":     news,
		"sessions": s.sessions.Len(),
	})
}

func (s *server) handleBills(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	bills := catalog.FilterBills(s.store.Bills(), query)
	writeJSON(w, http.StatusOK, listResponse[models.Bill]{Total: len(bills), Items: bills})
}

func (s *server) handleBill(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.store.Bill(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "bill not found"})
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *server) handleTranslation(w http.ResponseWriter, r *http.Request) {
	bill, ok := s.store.Bill(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "bill not found"})
		return
	}

	res := s.translator.Translate(r.Context(), bill, r.URL.Query().Get("lang"))
	writeJSON(w, http.StatusOK, res)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.search == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "search index not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	q := r.URL.Query()
	params := elasticsearch.SearchParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Ministry: strings.TrimSpace(q.Get("ministry")),
		Status:   strings.TrimSpace(q.Get("status")),
		State:    strings.TrimSpace(q.Get("state")),
		From:     clampInt(q.Get("from"), 0, 10_000),
		Size:     clampInt(q.Get("size"), s.defaultPage, s.maxPage),
		Sort:     strings.TrimSpace(q.Get("sort")),
	}

	result, err := s.search.SearchBills(ctx, params)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	items := catalog.FilterNews(s.store.News(), query)
	writeJSON(w, http.StatusOK, listResponse[models.NewsItem]{Total: len(items), Items: items})
}

func (s *server) handleStatusCounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analytics.CountByStatus(s.store.Bills()))
}

func (s *server) handleMinistryCounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analytics.CountByMinistry(s.store.Bills()))
}

func (s *server) handleStateShares(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, analytics.CountByState(s.store.Bills()))
}

func (s *server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	id, st := s.sessions.Create()
	writeJSON(w, http.StatusCreated, sessionResponse{ID: id, State: st})
}

func (s *server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.sessions.Get(id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: st})
}

func (s *server) handleSessionEvent(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	event, err := appstate.DecodeEvent(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	id := chi.URLParam(r, "id")
	st, err := s.sessions.Dispatch(id, event)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: st})
}

func (s *server) handleSessionChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid chat request"})
		return
	}

	id := chi.URLParam(r, "id")
	st, err := s.sessions.Chat(r.Context(), id, req.Text)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{ID: id, State: st})
}

func (s *server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, chat.ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

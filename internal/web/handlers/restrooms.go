package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mr30303/taxiDriver/internal/model"
	"github.com/mr30303/taxiDriver/internal/store"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// RestroomsHandler serves documents from one collection
type RestroomsHandler struct {
	Store      store.Backend
	Collection string
}

// ListResponse is one page of restrooms
type ListResponse struct {
	Items  []model.Record `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// StatsResponse summarises the collection and its most recent import
type StatsResponse struct {
	Collection string           `json:"collection"`
	Documents  int              `json:"documents"`
	LastRun    *store.ImportRun `json:"last_run"`
}

// List returns restrooms ordered by id
func (h *RestroomsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil || limit < 1 {
		http.Error(w, "Invalid limit", http.StatusBadRequest)
		return
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		http.Error(w, "Invalid offset", http.StatusBadRequest)
		return
	}

	items, err := h.Store.List(r.Context(), h.Collection, limit, offset)
	if err != nil {
		log.Printf("list restrooms: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	total, err := h.Store.Count(r.Context(), h.Collection)
	if err != nil {
		log.Printf("count restrooms: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	if items == nil {
		items = []model.Record{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Items: items, Total: total, Limit: limit, Offset: offset})
}

// Get returns a single restroom by document id
func (h *RestroomsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.Store.Get(r.Context(), h.Collection, id)
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Restroom not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("get restroom %s: %v", id, err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// Stats returns the document count and the latest import run
func (h *RestroomsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, err := h.Store.Count(r.Context(), h.Collection)
	if err != nil {
		log.Printf("count restrooms: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	resp := StatsResponse{Collection: h.Collection, Documents: count}
	runs, err := h.Store.ListRuns(r.Context(), 1)
	if err != nil {
		log.Printf("list runs: %v", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if len(runs) > 0 {
		resp.LastRun = &runs[0]
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports that the server is up
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(raw)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

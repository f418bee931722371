package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"jobhunt-harvester/internal/domain"
	"jobhunt-harvester/internal/store"
)

type RunsHandler struct {
	Store *store.DB
}

type runDetail struct {
	Run      store.RunSummary         `json:"run"`
	Listings []domain.EnrichedListing `json:"listings"`
}

func (h RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		WriteError(w, r, http.StatusServiceUnavailable, CodeNoStore, "run history is disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.Store.ListRuns(r.Context(), limit)
	if err != nil {
		zap.L().Error("httpapi: list runs", zap.Error(err))
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, runs)
}

func (h RunsHandler) GetByPath(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		WriteError(w, r, http.StatusServiceUnavailable, CodeNoStore, "run history is disabled")
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/runs/"), "/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidID, "expected /runs/{id}")
		return
	}

	run, err := h.Store.GetRun(r.Context(), id)
	if errors.Is(err, store.ErrRunNotFound) {
		WriteError(w, r, http.StatusNotFound, CodeNotFound, "no run "+id)
		return
	}
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	listings, err := h.Store.RunListings(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, runDetail{Run: run, Listings: listings})
}

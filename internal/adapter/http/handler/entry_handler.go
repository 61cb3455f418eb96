package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/shopbook/internal/adapter/http/dto"
	"github.com/iho/shopbook/internal/adapter/http/middleware"
	"github.com/iho/shopbook/internal/usecase"
)

// EntryHandler handles entry-related HTTP requests.
type EntryHandler struct {
	entryUC *usecase.EntryUseCase
	statsUC *usecase.StatsUseCase
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(entryUC *usecase.EntryUseCase, statsUC *usecase.StatsUseCase) *EntryHandler {
	return &EntryHandler{entryUC: entryUC, statsUC: statsUC}
}

// Create records a new entry and applies its balance effect.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.CreateEntry(r.Context(), req.ToUseCaseInput(user.ID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to create entry", err.Error())

		return
	}

	h.statsUC.InvalidateCache(r.Context())

	writeJSON(w, http.StatusCreated, dto.EntryFromDomain(entry))
}

// Get retrieves an entry by ID.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), id)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get entry", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// List lists entries ordered by creation time descending.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.entryUC.ListEntries(r.Context(), usecase.ListEntriesInput{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// Update edits an entry and propagates amount deltas to the ledger.
func (h *EntryHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.UpdateEntry(r.Context(), req.ToUseCaseInput(id, user.ID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to update entry", err.Error())

		return
	}

	h.statsUC.InvalidateCache(r.Context())

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// Delete removes an entry, reversing every balance effect it ever applied.
func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	if err := h.entryUC.DeleteEntry(r.Context(), id, user.ID); err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to delete entry", err.Error())

		return
	}

	h.statsUC.InvalidateCache(r.Context())

	w.WriteHeader(http.StatusNoContent)
}

// Review records a review verdict on an entry.
func (h *EntryHandler) Review(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	var req dto.ReviewEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.entryUC.ReviewEntry(r.Context(), req.ToUseCaseInput(id, user.ID))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to review entry", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}

// ListSells lists sell entries for linking and dashboards.
func (h *EntryHandler) ListSells(w http.ResponseWriter, r *http.Request) {
	sells, err := h.entryUC.ListSells(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sells", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(sells))
}

// ListRestMoney lists the partial payments received against a sell.
func (h *EntryHandler) ListRestMoney(w http.ResponseWriter, r *http.Request) {
	sellID := chi.URLParam(r, "id")
	if sellID == "" {
		writeError(w, http.StatusBadRequest, "missing sell ID", "")
		return
	}

	entries, err := h.entryUC.ListRestMoney(r.Context(), sellID)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to list rest money", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// ListAssigned lists the caller's entries flagged incorrect by review.
func (h *EntryHandler) ListAssigned(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	entries, err := h.entryUC.ListAssigned(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assigned entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// GetBalance returns the current running balance.
func (h *EntryHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := h.entryUC.GetBalance(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromDomain(balance))
}

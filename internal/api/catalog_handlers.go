package api

import (
	"encoding/json"
	"net/http"

	"smartparking/internal/apperr"
	"smartparking/internal/auth"
	"smartparking/internal/entities"
)

// ListLots returns the authenticated owner's lots with derived aggregates.
func (h *Handler) ListLots(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lots, err := bnd.Catalog.ListLots(r.Context(), ownerID)
	if err != nil {
		writeError(w, err)
		return
	}
	if lots == nil {
		lots = []entities.LotSummary{}
	}
	writeJSON(w, http.StatusOK, lots)
}

// CreateLot creates a lot with its initial spot layout.
func (h *Handler) CreateLot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req entities.CreateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	lot, err := bnd.Catalog.CreateLot(r.Context(), ownerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Lot created successfully",
		"lot_id":  lot.ID,
	})
}

// GetLot returns a lot's detail. Owners additionally see each spot's
// upcoming bookings.
func (h *Handler) GetLot(w http.ResponseWriter, r *http.Request) {
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	lotID, err := pathID(r, "lot_id")
	if err != nil {
		writeError(w, err)
		return
	}

	callerID, _ := auth.UserID(r)
	detail, err := bnd.Catalog.GetLotDetail(r.Context(), lotID, callerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateLot mutates a lot. Supplying a spot layout rewrites the lot's spots
// and deletes their bookings.
func (h *Handler) UpdateLot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	lotID, err := pathID(r, "lot_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req entities.UpdateLotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	if err := bnd.Catalog.UpdateLot(r.Context(), lotID, ownerID, req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lot updated successfully"})
}

// DeleteLot removes a lot with all its spots and bookings.
func (h *Handler) DeleteLot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	lotID, err := pathID(r, "lot_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := bnd.Catalog.DeleteLot(r.Context(), lotID, ownerID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Lot deleted successfully"})
}

// AddSpot appends a spot to a lot.
func (h *Handler) AddSpot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	lotID, err := pathID(r, "lot_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req entities.SpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	spotID, err := bnd.Catalog.AddSpot(r.Context(), lotID, ownerID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Spot added successfully",
		"spot_id": spotID,
	})
}

// UpdateSpot changes a spot's category and price.
func (h *Handler) UpdateSpot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	lotID, err := pathID(r, "lot_id")
	if err != nil {
		writeError(w, err)
		return
	}
	spotID, err := pathID(r, "spot_id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req entities.SpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	if err := bnd.Catalog.UpdateSpot(r.Context(), lotID, int(spotID), ownerID, req); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Spot updated successfully"})
}

// DeleteSpot removes a spot and its bookings.
func (h *Handler) DeleteSpot(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}
	lotID, err := pathID(r, "lot_id")
	if err != nil {
		writeError(w, err)
		return
	}
	spotID, err := pathID(r, "spot_id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := bnd.Catalog.DeleteSpot(r.Context(), lotID, int(spotID), ownerID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Spot deleted successfully"})
}

package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"smartparking/internal/apperr"
	"smartparking/internal/auth"
	"smartparking/internal/entities"
)

// ListAvailable answers "what is free in this window", optionally narrowed by
// lot and category. The result is a snapshot: booking always re-validates.
func (h *Handler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	q := r.URL.Query()
	start, end, err := parseWindow(q.Get("start"), q.Get("end"))
	if err != nil {
		writeError(w, err)
		return
	}

	filter := entities.AvailabilityFilter{Category: q.Get("category")}
	if raw := q.Get("lot_id"); raw != "" {
		lotID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, apperr.New(apperr.Validation, "invalid lot_id"))
			return
		}
		filter.LotID = lotID
	}

	spots, err := bnd.Availability.ListAvailable(r.Context(), start, end, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entities.AvailabilityResponse{
		StartTime: start,
		EndTime:   end,
		Spots:     spots,
	})
}

// CreateBooking commits a reservation for the authenticated caller.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req entities.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	booking, err := bnd.Bookings.CreateBooking(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, entities.BookingResponse{
		BookingID:    booking.ID,
		Code:         booking.Code,
		LotID:        booking.LotID,
		SpotID:       booking.SpotID,
		StartTime:    booking.StartTime,
		EndTime:      booking.EndTime,
		PricePerHour: booking.PricePerHour,
		TotalCost:    booking.TotalCost,
	})
}

// ListMyBookings returns the caller's booking history.
func (h *Handler) ListMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	bookings, err := bnd.Bookings.ListForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []entities.UserBooking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// SpotBookings lists a spot's upcoming reservations.
func (h *Handler) SpotBookings(w http.ResponseWriter, r *http.Request) {
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

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	bookings, err := bnd.Availability.FutureBookings(r.Context(), lotID, int(spotID), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if bookings == nil {
		bookings = []entities.FutureBooking{}
	}
	writeJSON(w, http.StatusOK, bookings)
}

// SmartSearch matches a free-text request against the spots free in the
// window and returns a quoted selection.
func (h *Handler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	bnd, err := h.bundle(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req entities.SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	result, err := bnd.Search.Search(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

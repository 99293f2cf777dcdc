package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"smartparking/internal/auth"
)

// NewRouter wires the public routes and the authenticated subrouter.
// Availability, lot detail, smart search and health are public; everything
// that books or mutates the catalog requires a bearer token.
func NewRouter(h *Handler, jwtSecret string) *mux.Router {
	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/availability", h.ListAvailable).Methods(http.MethodGet)
	r.HandleFunc("/api/smart-search", h.SmartSearch).Methods(http.MethodPost)
	// Lot detail is public, but an owner presenting a token sees each spot's
	// upcoming bookings.
	r.Handle("/api/lots/{lot_id}", auth.Optional(jwtSecret)(http.HandlerFunc(h.GetLot))).Methods(http.MethodGet)
	r.HandleFunc("/api/lots/{lot_id}/spots/{spot_id}/bookings", h.SpotBookings).Methods(http.MethodGet)

	// Authenticated endpoints
	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(auth.Middleware(jwtSecret))
	authed.HandleFunc("/bookings", h.CreateBooking).Methods(http.MethodPost)
	authed.HandleFunc("/bookings", h.ListMyBookings).Methods(http.MethodGet)
	authed.HandleFunc("/lots", h.ListLots).Methods(http.MethodGet)
	authed.HandleFunc("/lots", h.CreateLot).Methods(http.MethodPost)
	authed.HandleFunc("/lots/{lot_id}", h.UpdateLot).Methods(http.MethodPut)
	authed.HandleFunc("/lots/{lot_id}", h.DeleteLot).Methods(http.MethodDelete)
	authed.HandleFunc("/lots/{lot_id}/spots", h.AddSpot).Methods(http.MethodPost)
	authed.HandleFunc("/lots/{lot_id}/spots/{spot_id}", h.UpdateSpot).Methods(http.MethodPut)
	authed.HandleFunc("/lots/{lot_id}/spots/{spot_id}", h.DeleteSpot).Methods(http.MethodDelete)

	return r
}

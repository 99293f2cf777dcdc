package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"smartparking/internal/apperr"
	"smartparking/internal/auth"
	"smartparking/internal/tenant"
)

// Handler serves the public API. Every request resolves its tenant partition
// first; all queries within the request run against that partition's store.
type Handler struct {
	Tenants *tenant.Resolver
}

func NewHandler(tenants *tenant.Resolver) *Handler {
	return &Handler{Tenants: tenants}
}

// bundle resolves the partition for this request: the token's demo claim
// wins, then the X-Partition header, then production.
func (h *Handler) bundle(r *http.Request) (*tenant.Bundle, error) {
	partition := r.Header.Get("X-Partition")
	if auth.IsDemo(r) {
		partition = tenant.Demo
	}
	return h.Tenants.Resolve(partition)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Newf(apperr.Validation, "invalid %s", name)
	}
	return id, nil
}

func parseWindow(startRaw, endRaw string) (time.Time, time.Time, error) {
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.New(apperr.Validation, "start must be an RFC3339 timestamp")
	}
	end, err := time.Parse(time.RFC3339, endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.New(apperr.Validation, "end must be an RFC3339 timestamp")
	}
	return start, end, nil
}

// Health reports whether the production store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	bnd, err := h.Tenants.Resolve(tenant.Production)
	if err != nil {
		writeError(w, err)
		return
	}
	status := "healthy"
	database := "connected"
	code := http.StatusOK
	if err := bnd.Store.PingContext(r.Context()); err != nil {
		status = "degraded"
		database = "unreachable"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]string{"status": status, "database": database})
}

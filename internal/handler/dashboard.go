package handler

import (
	"net/http"

	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/dashboard"
)

type DashboardHandler struct {
	svc *dashboard.Service
}

func NewDashboardHandler(svc *dashboard.Service) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get handles GET /api/dashboard
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	sum, err := h.svc.Summary(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "dashboard", sum)
}

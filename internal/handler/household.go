package handler

import (
	"net/http"

	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/membership"
	"github.com/dukerupert/housy/internal/websocket"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type HouseholdHandler struct {
	svc  *membership.Service
	feed feed
}

func NewHouseholdHandler(svc *membership.Service, hub *websocket.Hub) *HouseholdHandler {
	return &HouseholdHandler{svc: svc, feed: feed{hub: hub}}
}

// Get handles GET /api/household
func (h *HouseholdHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Current(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"household": view.Household,
		"role":      view.Role,
		"members":   view.Members,
	})
}

// Create handles POST /api/household
func (h *HouseholdHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in membership.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	hh, err := h.svc.Create(r.Context(), auth.ActorFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusCreated, "household", hh)
}

type codeRequest struct {
	InviteCode string `json:"invite_code"`
}

// Join handles POST /api/household/join
func (h *HouseholdHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req codeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	hh, err := h.svc.Join(r.Context(), actor, req.InviteCode)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publishTo(hh.ID, actor, "member", "joined", actor.UserID)
	writeResult(w, http.StatusOK, "household", hh)
}

// Switch handles POST /api/household/switch
func (h *HouseholdHandler) Switch(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req codeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	hh, err := h.svc.Switch(r.Context(), actor, req.InviteCode)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "member", "left", actor.UserID)
	h.feed.evict(actor.HouseholdID, actor.UserID)
	h.feed.publishTo(hh.ID, actor, "member", "joined", actor.UserID)
	writeResult(w, http.StatusOK, "household", hh)
}

// Leave handles POST /api/household/leave
func (h *HouseholdHandler) Leave(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	if err := h.svc.Leave(r.Context(), actor); err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "member", "left", actor.UserID)
	h.feed.evict(actor.HouseholdID, actor.UserID)
	writeOK(w)
}

// Members handles GET /api/household/members
func (h *HouseholdHandler) Members(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.Members(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "members", list(members))
}

// Promote handles POST /api/household/members/{id}/promote
func (h *HouseholdHandler) Promote(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	m, err := h.svc.Promote(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "member", "promoted", id)
	writeResult(w, http.StatusOK, "member", m)
}

// RemoveMember handles DELETE /api/household/members/{id}
func (h *HouseholdHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.RemoveMember(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "member", "removed", id)
	h.feed.evict(actor.HouseholdID, id)
	writeOK(w)
}

// RegenerateInviteCode handles POST /api/household/invite-code
func (h *HouseholdHandler) RegenerateInviteCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.svc.RegenerateInviteCode(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "invite_code", code)
}

// UpdateBudget handles PUT /api/household/budget. A null amount clears the budget.
func (h *HouseholdHandler) UpdateBudget(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		MonthlyBudget *decimal.Decimal `json:"monthly_budget"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	hh, err := h.svc.UpdateBudget(r.Context(), actor, req.MonthlyBudget)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "household", "updated", uuid.Nil)
	writeResult(w, http.StatusOK, "household", hh)
}

// Invite handles POST /api/household/invite
func (h *HouseholdHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var in membership.InviteInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.InviteByEmail(r.Context(), auth.ActorFrom(r.Context()), in); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

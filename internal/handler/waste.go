package handler

import (
	"net/http"

	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/waste"
	"github.com/dukerupert/housy/internal/websocket"
)

type WasteHandler struct {
	svc  *waste.Service
	feed feed
}

func NewWasteHandler(svc *waste.Service, hub *websocket.Hub) *WasteHandler {
	return &WasteHandler{svc: svc, feed: feed{hub: hub}}
}

// List handles GET /api/waste
func (h *WasteHandler) List(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.svc.List(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "schedules", list(schedules))
}

// Next handles GET /api/waste/next. next is null when nothing is scheduled.
func (h *WasteHandler) Next(w http.ResponseWriter, r *http.Request) {
	next, err := h.svc.Next(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "next", next)
}

// Create handles POST /api/waste
func (h *WasteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var in waste.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "waste", "created", s.ID)
	writeResult(w, http.StatusCreated, "schedule", s)
}

// Update handles PUT /api/waste/{id}
func (h *WasteHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in waste.UpdateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	s, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "waste", "updated", s.ID)
	writeResult(w, http.StatusOK, "schedule", s)
}

// Toggle handles POST /api/waste/{id}/toggle
func (h *WasteHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	s, err := h.svc.Toggle(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "waste", "toggled", s.ID)
	writeResult(w, http.StatusOK, "schedule", s)
}

// Delete handles DELETE /api/waste/{id}
func (h *WasteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "waste", "deleted", id)
	writeOK(w)
}

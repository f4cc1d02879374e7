package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/bill"
	"github.com/dukerupert/housy/internal/websocket"
)

type BillHandler struct {
	svc  *bill.Service
	feed feed
	loc  *time.Location
}

func NewBillHandler(svc *bill.Service, hub *websocket.Hub, loc *time.Location) *BillHandler {
	return &BillHandler{svc: svc, feed: feed{hub: hub}, loc: loc}
}

// List handles GET /api/bills
func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.List(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "bills", list(bills))
}

// Upcoming handles GET /api/bills/upcoming
func (h *BillHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	bills, err := h.svc.Upcoming(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "bills", list(bills))
}

// Create handles POST /api/bills
func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var in bill.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	b, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "bill", "created", b.ID)
	writeResult(w, http.StatusCreated, "bill", b)
}

// Update handles PUT /api/bills/{id}
func (h *BillHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in bill.UpdateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	b, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "bill", "updated", b.ID)
	writeResult(w, http.StatusOK, "bill", b)
}

// Delete handles DELETE /api/bills/{id}
func (h *BillHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	h.feed.publish(actor, "bill", "deleted", id)
	writeOK(w)
}

// MarkPaid handles POST /api/bills/{id}/paid with an optional {"paid_on": "YYYY-MM-DD"}.
func (h *BillHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req struct {
		PaidOn string `json:"paid_on"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	var paidOn *time.Time
	if req.PaidOn != "" {
		d, err := time.ParseInLocation(time.DateOnly, req.PaidOn, h.loc)
		if err != nil {
			writeError(w, apperr.Validation("paid_on must be a date in YYYY-MM-DD format"))
			return
		}
		paidOn = &d
	}

	b, err := h.svc.MarkPaid(r.Context(), actor, id, paidOn)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "bill", "paid", b.ID)
	writeResult(w, http.StatusOK, "bill", b)
}

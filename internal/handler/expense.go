package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/expense"
	"github.com/dukerupert/housy/internal/websocket"
)

type ExpenseHandler struct {
	svc  *expense.Service
	feed feed
	loc  *time.Location
}

func NewExpenseHandler(svc *expense.Service, hub *websocket.Hub, loc *time.Location) *ExpenseHandler {
	return &ExpenseHandler{svc: svc, feed: feed{hub: hub}, loc: loc}
}

// List handles GET /api/expenses?start=&end=&category_id=&user_id=&limit=&offset=
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	var in expense.ListInput
	var err error
	if in.Start, err = queryDate(r, "start", h.loc); err != nil {
		writeError(w, err)
		return
	}
	if in.End, err = queryDate(r, "end", h.loc); err != nil {
		writeError(w, err)
		return
	}
	if in.CategoryID, err = queryUUID(r, "category_id"); err != nil {
		writeError(w, err)
		return
	}
	if in.UserID, err = queryUUID(r, "user_id"); err != nil {
		writeError(w, err)
		return
	}
	if in.Limit, err = queryInt(r, "limit"); err != nil {
		writeError(w, err)
		return
	}
	if in.Offset, err = queryInt(r, "offset"); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.svc.List(r.Context(), auth.ActorFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"expenses": res.Expenses,
		"total":    res.Total,
	})
}

// Get handles GET /api/expenses/{id}
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := h.svc.Get(r.Context(), auth.ActorFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "expense", e)
}

// Create handles POST /api/expenses
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var in expense.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	e, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "expense", "created", e.ID)
	writeResult(w, http.StatusCreated, "expense", e)
}

// Update handles PUT /api/expenses/{id}
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in expense.UpdateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	e, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "expense", "updated", e.ID)
	writeResult(w, http.StatusOK, "expense", e)
}

// Delete handles DELETE /api/expenses/{id}
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	h.feed.publish(actor, "expense", "deleted", id)
	writeOK(w)
}

// Summary handles GET /api/expenses/summary?start=&end=, defaulting to the current month.
func (h *ExpenseHandler) Summary(w http.ResponseWriter, r *http.Request) {
	start, err := queryDate(r, "start", h.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	end, err := queryDate(r, "end", h.loc)
	if err != nil {
		writeError(w, err)
		return
	}
	sum, err := h.svc.Summary(r.Context(), auth.ActorFrom(r.Context()), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "summary", sum)
}

// SuggestCategory handles GET /api/expenses/suggest-category?description=
func (h *ExpenseHandler) SuggestCategory(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Suggest(r.Context(), auth.ActorFrom(r.Context()), r.URL.Query().Get("description"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "suggestion", s)
}

// Categories handles GET /api/categories
func (h *ExpenseHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "categories", list(cats))
}

// CreateCategory handles POST /api/categories
func (h *ExpenseHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var in expense.CategoryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.CreateCategory(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "category", "created", c.ID)
	writeResult(w, http.StatusCreated, "category", c)
}

// UpdateCategory handles PUT /api/categories/{id}
func (h *ExpenseHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in expense.CategoryInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.UpdateCategory(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "category", "updated", c.ID)
	writeResult(w, http.StatusOK, "category", c)
}

// DeleteCategory handles DELETE /api/categories/{id}
func (h *ExpenseHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), actor, id); err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "category", "deleted", id)
	writeOK(w)
}

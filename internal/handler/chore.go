package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/chore"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/websocket"
	"github.com/google/uuid"
)

// CompletionNotifier pushes a chore completion to the rest of the household.
type CompletionNotifier interface {
	NotifyChoreCompleted(ctx context.Context, householdID, actorID uuid.UUID, actorName, choreName string, points int)
}

type ChoreHandler struct {
	svc      *chore.Service
	users    *store.UserStore
	notifier CompletionNotifier
	feed     feed
	loc      *time.Location
	logger   *slog.Logger
}

// NewChoreHandler wires the chore endpoints. notifier may be nil when push is disabled.
func NewChoreHandler(svc *chore.Service, us *store.UserStore, notifier CompletionNotifier, hub *websocket.Hub, loc *time.Location, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{svc: svc, users: us, notifier: notifier, feed: feed{hub: hub}, loc: loc, logger: logger}
}

// List handles GET /api/chores
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.svc.List(r.Context(), auth.ActorFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "chores", list(chores))
}

// Get handles GET /api/chores/{id}
func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.Get(r.Context(), auth.ActorFrom(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "chore", c)
}

// Create handles POST /api/chores
func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var in chore.CreateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.Create(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "chore", "created", c.ID)
	writeResult(w, http.StatusCreated, "chore", c)
}

// Update handles PUT /api/chores/{id}
func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var in chore.UpdateInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	c, err := h.svc.Update(r.Context(), actor, id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.feed.publish(actor, "chore", "updated", c.ID)
	writeResult(w, http.StatusOK, "chore", c)
}

// Delete handles DELETE /api/chores/{id}
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	h.feed.publish(actor, "chore", "deleted", id)
	writeOK(w)
}

// Complete handles POST /api/chores/{id}/complete
func (h *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.svc.Complete(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	h.feed.publish(actor, "chore", "completed", id)
	if h.notifier != nil {
		go h.notifyCompleted(context.WithoutCancel(r.Context()), actor, res)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"points_earned": res.PointsEarned,
		"chore":         res.Chore,
	})
}

func (h *ChoreHandler) notifyCompleted(ctx context.Context, actor auth.Actor, res *chore.CompleteResult) {
	name := "Qualcuno"
	u, err := h.users.GetByID(ctx, actor.UserID)
	if err != nil {
		h.logger.Warn("load completing user", "user_id", actor.UserID, "error", err)
	} else if u != nil {
		name = u.DisplayName()
	}
	h.notifier.NotifyChoreCompleted(ctx, actor.HouseholdID, actor.UserID, name, res.Chore.Name, res.PointsEarned)
}

// Stats handles GET /api/chores/stats?start=YYYY-MM-DD&end=YYYY-MM-DD.
// Both bounds are inclusive days; omitting one leaves that side open.
func (h *ChoreHandler) Stats(w http.ResponseWriter, r *http.Request) {
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
	if end != nil {
		last := end.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &last
	}
	stats, err := h.svc.Stats(r.Context(), auth.ActorFrom(r.Context()), chore.Period{Start: start, End: end})
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "stats", list(stats))
}

// Completions handles GET /api/chores/completions?limit=N
func (h *ChoreHandler) Completions(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit")
	if err != nil {
		writeError(w, err)
		return
	}
	completions, err := h.svc.RecentCompletions(r.Context(), auth.ActorFrom(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "completions", list(completions))
}

package handler

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/dukerupert/housy/internal/push"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/validate"
)

type PushHandler struct {
	pushStore *store.PushStore
	service   *push.Service
	logger    *slog.Logger
}

func NewPushHandler(ps *store.PushStore, svc *push.Service, logger *slog.Logger) *PushHandler {
	return &PushHandler{pushStore: ps, service: svc, logger: logger}
}

type subscribeRequest struct {
	Endpoint   string `json:"endpoint" validate:"required,url,max=2048"`
	P256dh     string `json:"p256dh" validate:"required,max=256"`
	Auth       string `json:"auth" validate:"required,max=256"`
	DeviceName string `json:"device_name" validate:"max=100"`
}

// GetVAPIDKey handles GET /api/push/vapid-key
func (h *PushHandler) GetVAPIDKey(w http.ResponseWriter, r *http.Request) {
	if !h.service.Configured() {
		writeError(w, apperr.NotFound("push notifications are not configured"))
		return
	}
	writeResult(w, http.StatusOK, "public_key", h.service.VAPIDPublicKey())
}

// Subscribe handles POST /api/push/subscribe
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req subscribeRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.pushStore.Subscribe(r.Context(), actor.UserID, actor.HouseholdID, req.Endpoint, req.P256dh, req.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("create push subscription", "error", err)
		writeError(w, apperr.Persistence("save subscription", err))
		return
	}
	writeResult(w, http.StatusCreated, "subscription", sub)
}

// Unsubscribe handles DELETE /api/push/subscribe with {"endpoint": "..."}.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	subs, err := h.pushStore.ListByUser(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("list push subscriptions", "error", err)
		writeError(w, apperr.Persistence("list subscriptions", err))
		return
	}
	// Only the owner may drop an endpoint.
	if !slices.ContainsFunc(subs, func(s model.PushSubscription) bool { return s.Endpoint == req.Endpoint }) {
		writeError(w, apperr.NotFound("subscription not found"))
		return
	}
	if err := h.pushStore.DeleteByEndpoint(r.Context(), req.Endpoint); err != nil {
		h.logger.Error("delete push subscription", "error", err)
		writeError(w, apperr.Persistence("delete subscription", err))
		return
	}
	writeOK(w)
}

// GetPreferences handles GET /api/push/preferences
func (h *PushHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	prefs, err := h.pushStore.GetPreferences(r.Context(), actor.UserID, actor.HouseholdID)
	if err != nil {
		h.logger.Error("get push preferences", "error", err)
		writeError(w, apperr.Persistence("get preferences", err))
		return
	}
	writeResult(w, http.StatusOK, "preferences", prefs)
}

type updatePreferencesRequest struct {
	Preferences []model.NotificationPreference `json:"preferences"`
}

// UpdatePreferences handles PUT /api/push/preferences
func (h *PushHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var req updatePreferencesRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	for _, p := range req.Preferences {
		if !slices.Contains(model.NotificationTypes, p.NotificationType) {
			writeError(w, apperr.Validation("unknown notification type %q", p.NotificationType))
			return
		}
	}

	for _, p := range req.Preferences {
		if err := h.pushStore.SetPreference(r.Context(), actor.UserID, actor.HouseholdID, p.NotificationType, p.Enabled); err != nil {
			h.logger.Error("set push preference", "error", err)
			writeError(w, apperr.Persistence("update preferences", err))
			return
		}
	}

	prefs, err := h.pushStore.GetPreferences(r.Context(), actor.UserID, actor.HouseholdID)
	if err != nil {
		h.logger.Error("get push preferences", "error", err)
		writeError(w, apperr.Persistence("get preferences", err))
		return
	}
	writeResult(w, http.StatusOK, "preferences", prefs)
}

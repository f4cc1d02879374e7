package handler

import (
	"net/http"
	"time"

	"github.com/dukerupert/housy/internal/account"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/membership"
	"github.com/dukerupert/housy/internal/middleware"
	"github.com/dukerupert/housy/internal/model"
)

type AuthHandler struct {
	accounts     *account.Service
	membership   *membership.Service
	secureCookie bool
}

func NewAuthHandler(as *account.Service, ms *membership.Service, secureCookie bool) *AuthHandler {
	return &AuthHandler{accounts: as, membership: ms, secureCookie: secureCookie}
}

func (h *AuthHandler) setSession(w http.ResponseWriter, sess *model.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in account.RegisterInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	login, err := h.accounts.Register(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSession(w, login.Session)
	writeResult(w, http.StatusCreated, "user", login.User)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in account.LoginInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	login, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	h.setSession(w, login.Session)
	writeResult(w, http.StatusOK, "user", login.User)
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(r.Context(), auth.ActorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	h.clearSession(w)
	writeOK(w)
}

type profileResponse struct {
	*model.User
	DisplayName string      `json:"display_name"`
	HouseholdID *string     `json:"household_id"`
	Role        *model.Role `json:"role"`
}

// Profile handles GET /api/profile
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	u, err := h.accounts.Profile(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "profile", newProfile(u, actor))
}

func newProfile(u *model.User, actor auth.Actor) profileResponse {
	p := profileResponse{User: u, DisplayName: u.DisplayName()}
	if actor.HasHousehold() {
		hid := actor.HouseholdID.String()
		p.HouseholdID = &hid
		p.Role = &actor.Role
	}
	return p
}

// UpdateProfile handles PUT /api/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r.Context())
	var in account.ProfileInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	u, err := h.accounts.UpdateProfile(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, http.StatusOK, "profile", newProfile(u, actor))
}

// ChangePassword handles PUT /api/profile/password
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var in account.PasswordInput
	if err := decode(w, r, &in); err != nil {
		writeError(w, err)
		return
	}
	if err := h.accounts.ChangePassword(r.Context(), auth.ActorFrom(r.Context()), in); err != nil {
		writeError(w, err)
		return
	}
	writeOK(w)
}

// DeleteAccount handles DELETE /api/profile
func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.membership.DeleteAccount(r.Context(), auth.ActorFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	h.clearSession(w)
	writeOK(w)
}

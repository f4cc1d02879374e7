package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/store"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "housy_session"

// Authenticate resolves the session cookie into an auth.Actor when present.
// Requests without a valid session pass through unauthenticated.
func Authenticate(sessions *store.SessionStore, households *store.HouseholdStore, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sessions.GetByToken(r.Context(), cookie.Value)
			if err != nil {
				logger.Error("lookup session", "error", err)
				writeError(w, apperr.Persistence("lookup session", err))
				return
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			actor := auth.Actor{UserID: sess.UserID, SessionID: sess.ID}
			m, err := households.GetMembershipForUser(r.Context(), sess.UserID)
			if err != nil {
				logger.Error("lookup membership", "error", err)
				writeError(w, apperr.Persistence("lookup membership", err))
				return
			}
			if m != nil {
				actor.HouseholdID = m.HouseholdID
				actor.Role = m.Role
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// RequireAuth rejects requests without an authenticated actor.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.ActorFrom(r.Context()).Authenticated() {
			writeError(w, apperr.Unauthenticated())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireHousehold rejects callers who have not joined a household yet.
func RequireHousehold(next http.Handler) http.Handler {
	return RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.ActorFrom(r.Context()).HasHousehold() {
			writeError(w, apperr.NotFound("you are not a member of any household"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// RequireAdmin checks that the caller administers their household.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireHousehold(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !auth.ActorFrom(r.Context()).IsAdmin() {
			writeError(w, apperr.Forbidden("only household admins can do this"))
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatus(err))
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": apperr.Message(err)})
}

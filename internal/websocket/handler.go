package websocket

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/housy/internal/auth"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades an authenticated request and joins the caller to
// their household's room. originPatterns restricts cross-origin upgrades;
// when empty only same-origin requests are accepted.
func HandleWebSocket(hub *Hub, logger *slog.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := auth.ActorFrom(r.Context())
		if !actor.HasHousehold() {
			http.Error(w, "household required", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{OriginPatterns: originPatterns})
		if err != nil {
			logger.Warn("websocket: accept", "error", err)
			return
		}

		logger.Debug("websocket: connected", "user_id", actor.UserID, "household_id", actor.HouseholdID)
		NewClient(hub, conn, actor.HouseholdID, actor.UserID).Run(r.Context())
	}
}

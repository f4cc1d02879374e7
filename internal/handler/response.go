package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/dukerupert/housy/internal/apperr"
	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/websocket"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeResult writes {"success": true, key: v}.
func writeResult(w http.ResponseWriter, status int, key string, v any) {
	body := map[string]any{"success": true}
	if key != "" {
		body[key] = v
	}
	writeJSON(w, status, body)
}

func writeOK(w http.ResponseWriter) {
	writeResult(w, http.StatusOK, "", nil)
}

// writeError maps err to its status and a caller-safe message.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(err), map[string]any{"success": false, "error": apperr.Message(err)})
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.Validation("request body too large")
	}
	return apperr.Validation("invalid JSON body")
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound("not found")
	}
	return id, nil
}

// queryDate parses a YYYY-MM-DD query parameter as midnight in loc.
func queryDate(r *http.Request, name string, loc *time.Location) (*time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, v, loc)
	if err != nil {
		return nil, apperr.Validation("%s must be a date in YYYY-MM-DD format", name)
	}
	return &d, nil
}

func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil, nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return nil, apperr.Validation("%s is not a valid id", name)
	}
	return &id, nil
}

func queryInt(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, apperr.Validation("%s must be a non-negative integer", name)
	}
	return n, nil
}

// feed publishes change events to the caller's household.
type feed struct {
	hub *websocket.Hub
}

func (f feed) publish(actor auth.Actor, entity, action string, id uuid.UUID) {
	f.publishTo(actor.HouseholdID, actor, entity, action, id)
}

func (f feed) publishTo(householdID uuid.UUID, actor auth.Actor, entity, action string, id uuid.UUID) {
	if f.hub == nil || householdID == uuid.Nil {
		return
	}
	f.hub.Broadcast(householdID, websocket.NewMessage(entity, action, id, nil).By(actor.UserID))
}

// evict drops userID's live connections to a household they no longer belong to.
func (f feed) evict(householdID, userID uuid.UUID) {
	if f.hub == nil || householdID == uuid.Nil {
		return
	}
	f.hub.DisconnectUser(householdID, userID)
}

// list keeps empty collections encoding as [] instead of null.
func list[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dukerupert/housy/internal/auth"
	"github.com/dukerupert/housy/internal/model"
	"github.com/google/uuid"

	ws "github.com/coder/websocket"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, householdID uuid.UUID) *Client {
	return &Client{
		hub:         hub,
		send:        make(chan []byte, sendBufferSize),
		householdID: householdID,
		userID:      uuid.New(),
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data := <-c.send:
		var got Message
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return got
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
	return Message{}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger)
	hid := uuid.New()

	c1 := mockClient(hub, hid)
	c2 := mockClient(hub, uuid.New())
	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}
	if got := hub.HouseholdClientCount(hid); got != 1 {
		t.Fatalf("expected 1 client in household, got %d", got)
	}

	hub.Unregister(c1)
	if got := hub.HouseholdClientCount(hid); got != 0 {
		t.Fatalf("expected empty household room, got %d", got)
	}

	hub.Unregister(c2)
	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(testLogger)
	c := mockClient(hub, uuid.New())
	hub.Register(c)
	hub.Unregister(c)
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastScopedToHousehold(t *testing.T) {
	hub := NewHub(testLogger)
	home := uuid.New()

	c1 := mockClient(hub, home)
	c2 := mockClient(hub, home)
	other := mockClient(hub, uuid.New())
	for _, c := range []*Client{c1, c2, other} {
		hub.Register(c)
	}

	choreID := uuid.New()
	actor := uuid.New()
	hub.Broadcast(home, NewMessage("chore", "completed", choreID, map[string]any{"points": float64(2)}).By(actor))

	for _, c := range []*Client{c1, c2} {
		got := receive(t, c)
		if got.Type != "chore_completed" || got.Entity != "chore" || got.Action != "completed" {
			t.Errorf("message = %+v", got)
		}
		if got.ID != choreID.String() || got.ActorID != actor.String() {
			t.Errorf("id/actor = %s/%s", got.ID, got.ActorID)
		}
		if got.Extra["points"] != float64(2) {
			t.Errorf("extra = %v", got.Extra)
		}
	}

	select {
	case <-other.send:
		t.Error("client of another household received the message")
	default:
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(testLogger)
	hub.Broadcast(uuid.New(), NewMessage("bill", "paid", uuid.New(), nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(testLogger)
	hid := uuid.New()
	c := mockClient(hub, hid)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(hid, NewMessage("expense", "created", uuid.New(), nil))
	}
	// Dropped rather than blocking.
	hub.Broadcast(hid, NewMessage("expense", "dropped", uuid.New(), nil))

	if got := len(c.send); got != sendBufferSize {
		t.Errorf("expected %d buffered messages, got %d", sendBufferSize, got)
	}
	hub.Unregister(c)
}

func TestNewMessageWithoutID(t *testing.T) {
	msg := NewMessage("household", "updated", uuid.Nil, nil)
	if msg.Type != "household_updated" || msg.ID != "" {
		t.Errorf("message = %+v", msg)
	}
	data, _ := json.Marshal(msg)
	var raw map[string]any
	json.Unmarshal(data, &raw)
	if _, ok := raw["id"]; ok {
		t.Error("expected id to be omitted")
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger)
	hid := uuid.New()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := mockClient(hub, hid)
			hub.Register(c)
			hub.Broadcast(hid, NewMessage("test", "concurrent", uuid.Nil, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}()
	}
	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketRequiresHousehold(t *testing.T) {
	hub := NewHub(testLogger)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)

	HandleWebSocket(hub, testLogger, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestHandleWebSocketDelivers(t *testing.T) {
	hub := NewHub(testLogger)
	actor := auth.Actor{UserID: uuid.New(), HouseholdID: uuid.New(), Role: model.RoleMember}
	h := HandleWebSocket(hub, testLogger, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for hub.HouseholdClientCount(actor.HouseholdID) == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	hub.Broadcast(actor.HouseholdID, NewMessage("waste", "toggled", uuid.New(), nil))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "waste_toggled" {
		t.Errorf("type = %q, want waste_toggled", got.Type)
	}
}

func TestDisconnectUser(t *testing.T) {
	hub := NewHub(testLogger)
	home := uuid.New()

	phone := mockClient(hub, home)
	laptop := mockClient(hub, home)
	laptop.userID = phone.userID
	stays := mockClient(hub, home)
	elsewhere := mockClient(hub, uuid.New())
	elsewhere.userID = phone.userID
	for _, c := range []*Client{phone, laptop, stays, elsewhere} {
		hub.Register(c)
	}

	hub.DisconnectUser(home, phone.userID)

	if got := hub.HouseholdClientCount(home); got != 1 {
		t.Fatalf("expected 1 client left in household, got %d", got)
	}
	for _, c := range []*Client{phone, laptop} {
		if _, ok := <-c.send; ok {
			t.Error("expected send channel to be closed")
		}
	}
	if got := hub.ClientCount(); got != 2 {
		t.Errorf("expected the user's other household untouched, got %d clients", got)
	}

	hub.Broadcast(home, NewMessage("member", "removed", phone.userID, nil))
	if got := receive(t, stays); got.Type != "member_removed" {
		t.Errorf("type = %q, want member_removed", got.Type)
	}

	// The read pump still unregisters on its way out.
	hub.Unregister(phone)
	hub.Unregister(laptop)
	hub.DisconnectUser(uuid.New(), phone.userID)
}

func TestDisconnectUserClosesConnection(t *testing.T) {
	hub := NewHub(testLogger)
	actor := auth.Actor{UserID: uuid.New(), HouseholdID: uuid.New(), Role: model.RoleMember}
	h := HandleWebSocket(hub, testLogger, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for hub.HouseholdClientCount(actor.HouseholdID) == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("client never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	hub.DisconnectUser(actor.HouseholdID, actor.UserID)

	_, _, err = conn.Read(ctx)
	if status := ws.CloseStatus(err); status != ws.StatusNormalClosure {
		t.Fatalf("read after disconnect: status %v, err %v", status, err)
	}
}

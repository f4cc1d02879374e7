package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dukerupert/housy/internal/config"
	"github.com/dukerupert/housy/internal/database"
	"github.com/dukerupert/housy/internal/email"

	"github.com/google/uuid"

	ws "github.com/coder/websocket"
)

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	_, ts := newTestServer(t)
	return ts
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		Timezone:   "Europe/Rome",
		SessionTTL: time.Hour,
		FromEmail:  "noreply@housy.app",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New(db, cfg, email.NewClient("", cfg.FromEmail, cfg.BaseURL), logger)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

type apiClient struct {
	t    *testing.T
	base string
	http *http.Client
}

func newClient(t *testing.T, ts *httptest.Server) *apiClient {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &apiClient{t: t, base: ts.URL, http: &http.Client{Jar: jar}}
}

func (c *apiClient) do(method, path string, body any) (int, map[string]any) {
	c.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.base+path, r)
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := map[string]any{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		c.t.Fatalf("decode %s %s: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func (c *apiClient) expect(method, path string, body any, want int) map[string]any {
	c.t.Helper()
	status, out := c.do(method, path, body)
	if status != want {
		c.t.Fatalf("%s %s = %d, want %d (body %v)", method, path, status, want, out)
	}
	return out
}

func (c *apiClient) register(email string) string {
	c.t.Helper()
	out := c.expect("POST", "/api/auth/register", map[string]string{
		"email":    email,
		"password": "secret123",
	}, http.StatusCreated)
	return out["user"].(map[string]any)["id"].(string)
}

func TestHealth(t *testing.T) {
	ts := setupServer(t)
	out := newClient(t, ts).expect("GET", "/health", nil, http.StatusOK)
	if out["status"] != "ok" {
		t.Errorf("status = %v, want ok", out["status"])
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)

	for _, path := range []string{"/api/profile", "/api/dashboard", "/api/chores", "/api/household"} {
		out := c.expect("GET", path, nil, http.StatusUnauthorized)
		if out["success"] != false {
			t.Errorf("%s: success = %v, want false", path, out["success"])
		}
	}
}

func TestHouseholdRoutesRequireMembership(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)
	c.register("solo@example.com")

	c.expect("GET", "/api/profile", nil, http.StatusOK)
	out := c.expect("GET", "/api/chores", nil, http.StatusNotFound)
	if out["error"] != "you are not a member of any household" {
		t.Errorf("error = %v", out["error"])
	}
}

func TestLoginLogout(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)
	c.register("ada@example.com")
	c.expect("POST", "/api/auth/logout", nil, http.StatusOK)
	c.expect("GET", "/api/profile", nil, http.StatusUnauthorized)

	out := c.expect("POST", "/api/auth/login", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong-password",
	}, http.StatusUnauthorized)
	if out["error"] != "invalid email or password" {
		t.Errorf("error = %v", out["error"])
	}

	c.expect("POST", "/api/auth/login", map[string]string{
		"email":    "ADA@example.com",
		"password": "secret123",
	}, http.StatusOK)
	c.expect("GET", "/api/profile", nil, http.StatusOK)
}

func TestHouseholdChoreFlow(t *testing.T) {
	ts := setupServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	aliceID := alice.register("alice@example.com")
	bobID := bob.register("bob@example.com")

	created := alice.expect("POST", "/api/household", map[string]string{"name": "Casa"}, http.StatusCreated)
	code := created["household"].(map[string]any)["invite_code"].(string)
	bob.expect("POST", "/api/household/join", map[string]string{"invite_code": code}, http.StatusOK)

	members := alice.expect("GET", "/api/household/members", nil, http.StatusOK)["members"].([]any)
	if len(members) != 2 {
		t.Fatalf("members = %d, want 2", len(members))
	}

	// Only admins manage chores.
	bob.expect("POST", "/api/chores", map[string]any{"name": "Piatti", "frequency": "daily"}, http.StatusForbidden)

	chore := alice.expect("POST", "/api/chores", map[string]any{
		"name":           "Piatti",
		"frequency":      "daily",
		"points":         5,
		"rotation_order": []string{aliceID, bobID},
	}, http.StatusCreated)["chore"].(map[string]any)
	choreID := chore["id"].(string)
	if chore["current_assignee"] != aliceID {
		t.Fatalf("current_assignee = %v, want alice", chore["current_assignee"])
	}

	bob.expect("POST", "/api/chores/"+choreID+"/complete", nil, http.StatusConflict)

	done := alice.expect("POST", "/api/chores/"+choreID+"/complete", nil, http.StatusOK)
	if done["points_earned"] != float64(5) {
		t.Errorf("points_earned = %v, want 5", done["points_earned"])
	}
	if got := done["chore"].(map[string]any)["current_assignee"]; got != bobID {
		t.Errorf("current_assignee = %v, want bob", got)
	}

	stats := bob.expect("GET", "/api/chores/stats", nil, http.StatusOK)["stats"].([]any)
	if len(stats) != 2 {
		t.Fatalf("stats = %d rows, want 2", len(stats))
	}
	first := stats[0].(map[string]any)
	if first["user_id"] != aliceID || first["total_points"] != float64(5) {
		t.Errorf("first stats row = %v", first)
	}

	bob.expect("GET", "/api/chores/not-a-uuid", nil, http.StatusNotFound)
}

func TestSoleAdminCannotLeave(t *testing.T) {
	ts := setupServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	alice.register("alice@example.com")
	bob.register("bob@example.com")

	created := alice.expect("POST", "/api/household", map[string]string{"name": "Casa"}, http.StatusCreated)
	code := created["household"].(map[string]any)["invite_code"].(string)
	bob.expect("POST", "/api/household/join", map[string]string{"invite_code": code}, http.StatusOK)

	alice.expect("POST", "/api/household/leave", nil, http.StatusConflict)
	bob.expect("POST", "/api/household/leave", nil, http.StatusOK)
	alice.expect("POST", "/api/household/leave", nil, http.StatusOK)
}

func TestExpenseOwnership(t *testing.T) {
	ts := setupServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	alice.register("alice@example.com")
	bob.register("bob@example.com")

	created := alice.expect("POST", "/api/household", map[string]string{"name": "Casa"}, http.StatusCreated)
	code := created["household"].(map[string]any)["invite_code"].(string)
	bob.expect("POST", "/api/household/join", map[string]string{"invite_code": code}, http.StatusOK)

	exp := bob.expect("POST", "/api/expenses", map[string]any{
		"amount":      "12.50",
		"description": "Spesa al supermercato",
	}, http.StatusCreated)["expense"].(map[string]any)
	id := exp["id"].(string)

	alice.expect("PUT", "/api/expenses/"+id, map[string]any{"amount": "99"}, http.StatusForbidden)
	alice.expect("DELETE", "/api/expenses/"+id, nil, http.StatusForbidden)

	bob.expect("POST", "/api/expenses", map[string]any{"amount": "0"}, http.StatusUnprocessableEntity)

	list := alice.expect("GET", "/api/expenses", nil, http.StatusOK)
	if list["total"] != float64(1) {
		t.Errorf("total = %v, want 1", list["total"])
	}

	bob.expect("DELETE", "/api/expenses/"+id, nil, http.StatusOK)
	bob.expect("GET", "/api/expenses/"+id, nil, http.StatusNotFound)
}

func TestDashboard(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)
	c.register("alice@example.com")
	c.expect("POST", "/api/household", map[string]string{"name": "Casa"}, http.StatusCreated)

	out := c.expect("GET", "/api/dashboard", nil, http.StatusOK)
	if _, ok := out["dashboard"].(map[string]any); !ok {
		t.Fatalf("dashboard missing: %v", out)
	}
}

func TestPushVAPIDKeyDisabled(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)
	c.register("alice@example.com")
	c.expect("GET", "/api/push/vapid-key", nil, http.StatusNotFound)
}

func TestLoginRateLimited(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)

	body := map[string]string{"email": "nobody@example.com", "password": "whatever"}
	for i := 0; i < authRateLimit; i++ {
		c.expect("POST", "/api/auth/login", body, http.StatusUnauthorized)
	}
	c.expect("POST", "/api/auth/login", body, http.StatusTooManyRequests)
}

func TestPushSubscriptionLifecycle(t *testing.T) {
	ts := setupServer(t)
	c := newClient(t, ts)
	c.register("alice@example.com")

	sub := map[string]string{
		"endpoint": "https://push.example.com/send/abc",
		"p256dh":   "key",
		"auth":     "secret",
	}
	c.expect("POST", "/api/push/subscribe", sub, http.StatusNotFound)

	c.expect("POST", "/api/household", map[string]string{"name": "Casa"}, http.StatusCreated)
	c.expect("POST", "/api/push/subscribe", sub, http.StatusCreated)
	c.expect("POST", "/api/push/subscribe", map[string]string{"endpoint": "not a url"}, http.StatusUnprocessableEntity)

	c.expect("GET", "/api/push/preferences", nil, http.StatusOK)
	c.expect("PUT", "/api/push/preferences", map[string]any{
		"preferences": []map[string]any{{"notification_type": "horoscope", "enabled": true}},
	}, http.StatusUnprocessableEntity)

	gone := map[string]string{"endpoint": sub["endpoint"]}
	c.expect("DELETE", "/api/push/subscribe", gone, http.StatusOK)
	c.expect("DELETE", "/api/push/subscribe", gone, http.StatusNotFound)
}

func TestRemovedMemberLosesLiveFeed(t *testing.T) {
	srv, ts := newTestServer(t)
	alice := newClient(t, ts)
	bob := newClient(t, ts)
	alice.register("alice@example.com")
	bobID := bob.register("bob@example.com")

	created := alice.expect("POST", "/api/household", map[string]string{"name": "Casa"}, http.StatusCreated)
	household := created["household"].(map[string]any)
	householdID := uuid.MustParse(household["id"].(string))
	bob.expect("POST", "/api/household/join", map[string]string{"invite_code": household["invite_code"].(string)}, http.StatusOK)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", &ws.DialOptions{HTTPClient: bob.http})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	for srv.Hub().HouseholdClientCount(householdID) == 0 {
		select {
		case <-ctx.Done():
			t.Fatal("websocket client never registered")
		case <-time.After(5 * time.Millisecond):
		}
	}

	alice.expect("DELETE", "/api/household/members/"+bobID, nil, http.StatusOK)

	// The removal notice may arrive before the close frame.
	for {
		_, _, err := conn.Read(ctx)
		if err == nil {
			continue
		}
		if status := ws.CloseStatus(err); status != ws.StatusNormalClosure {
			t.Fatalf("connection ended with status %v: %v", status, err)
		}
		break
	}
}

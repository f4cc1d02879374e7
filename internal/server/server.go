package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/housy/internal/account"
	"github.com/dukerupert/housy/internal/bill"
	"github.com/dukerupert/housy/internal/chore"
	"github.com/dukerupert/housy/internal/config"
	"github.com/dukerupert/housy/internal/dashboard"
	"github.com/dukerupert/housy/internal/email"
	"github.com/dukerupert/housy/internal/expense"
	"github.com/dukerupert/housy/internal/handler"
	"github.com/dukerupert/housy/internal/membership"
	"github.com/dukerupert/housy/internal/middleware"
	"github.com/dukerupert/housy/internal/push"
	"github.com/dukerupert/housy/internal/store"
	"github.com/dukerupert/housy/internal/waste"
	ws "github.com/dukerupert/housy/internal/websocket"
)

const (
	authRateLimit  = 10
	authRateWindow = time.Minute
)

type Server struct {
	db             *sql.DB
	hub            *ws.Hub
	authH          *handler.AuthHandler
	householdH     *handler.HouseholdHandler
	choreH         *handler.ChoreHandler
	billH          *handler.BillHandler
	wasteH         *handler.WasteHandler
	expenseH       *handler.ExpenseHandler
	dashboardH     *handler.DashboardHandler
	pushH          *handler.PushHandler
	accounts       *account.Service
	sessionStore   *store.SessionStore
	householdStore *store.HouseholdStore
	rateLimiter    *middleware.RateLimiter
	pushScheduler  *push.Scheduler
	originPatterns []string
	logger         *slog.Logger
}

// New wires stores, services and handlers. The push scheduler is only
// built when both VAPID keys are configured.
func New(db *sql.DB, cfg *config.Config, emailClient *email.Client, logger *slog.Logger) *Server {
	loc := cfg.Location()
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	householdStore := store.NewHouseholdStore(db)
	choreStore := store.NewChoreStore(db)
	billStore := store.NewBillStore(db)
	wasteStore := store.NewWasteStore(db)
	expenseStore := store.NewExpenseStore(db)
	categoryStore := store.NewCategoryStore(db)
	pushSt := store.NewPushStore(db)

	accounts := account.NewService(userStore, sessionStore, cfg.SessionTTL, logger.With("component", "account"))
	members := membership.NewService(householdStore, userStore, pushSt, emailClient, logger.With("component", "membership"))
	chores := chore.NewService(choreStore, householdStore, logger.With("component", "chore"))
	bills := bill.NewService(billStore, logger.With("component", "bill"), loc)
	schedules := waste.NewService(wasteStore, logger.With("component", "waste"), loc)
	expenses := expense.NewService(expenseStore, categoryStore, logger.With("component", "expense"), loc)
	dash := dashboard.NewService(householdStore, expenses, chores, bills, schedules, logger.With("component", "dashboard"), loc)

	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, "mailto:"+cfg.FromEmail)
	var pushSched *push.Scheduler
	var notifier handler.CompletionNotifier
	if cfg.PushEnabled() {
		pushSched = push.NewScheduler(pushSvc, pushSt, billStore, wasteStore, choreStore, logger.With("component", "push"), loc)
		notifier = pushSched
	}

	return &Server{
		db:             db,
		hub:            hub,
		authH:          handler.NewAuthHandler(accounts, members, cfg.SecureCookie),
		householdH:     handler.NewHouseholdHandler(members, hub),
		choreH:         handler.NewChoreHandler(chores, userStore, notifier, hub, loc, logger.With("component", "chore_handler")),
		billH:          handler.NewBillHandler(bills, hub, loc),
		wasteH:         handler.NewWasteHandler(schedules, hub),
		expenseH:       handler.NewExpenseHandler(expenses, hub, loc),
		dashboardH:     handler.NewDashboardHandler(dash),
		pushH:          handler.NewPushHandler(pushSt, pushSvc, logger.With("component", "push_handler")),
		accounts:       accounts,
		sessionStore:   sessionStore,
		householdStore: householdStore,
		rateLimiter:    middleware.NewRateLimiter(),
		pushScheduler:  pushSched,
		originPatterns: cfg.AllowedOrigins,
		logger:         logger,
	}
}

// Accounts returns the account service for session cleanup.
func (s *Server) Accounts() *account.Service {
	return s.accounts
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushScheduler returns the reminder scheduler, or nil when push is disabled.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/auth/register", s.rateLimited(s.authH.Register))
	mux.HandleFunc("POST /api/auth/login", s.rateLimited(s.authH.Login))
	mux.HandleFunc("GET /health", s.healthHandler)

	// Signed in, household optional
	mux.Handle("POST /api/auth/logout", authed(s.authH.Logout))
	mux.Handle("GET /api/profile", authed(s.authH.Profile))
	mux.Handle("PUT /api/profile", authed(s.authH.UpdateProfile))
	mux.Handle("DELETE /api/profile", authed(s.authH.DeleteAccount))
	mux.Handle("PUT /api/profile/password", authed(s.authH.ChangePassword))

	mux.Handle("GET /api/household", authed(s.householdH.Get))
	mux.Handle("POST /api/household", authed(s.householdH.Create))
	mux.Handle("POST /api/household/join", authed(s.householdH.Join))
	mux.Handle("POST /api/household/switch", authed(s.householdH.Switch))

	mux.Handle("GET /api/push/vapid-key", authed(s.pushH.GetVAPIDKey))

	// Household members
	mux.Handle("POST /api/household/leave", member(s.householdH.Leave))
	mux.Handle("GET /api/household/members", member(s.householdH.Members))

	mux.Handle("GET /api/dashboard", member(s.dashboardH.Get))

	mux.Handle("POST /api/push/subscribe", member(s.pushH.Subscribe))
	mux.Handle("DELETE /api/push/subscribe", member(s.pushH.Unsubscribe))
	mux.Handle("GET /api/push/preferences", member(s.pushH.GetPreferences))
	mux.Handle("PUT /api/push/preferences", member(s.pushH.UpdatePreferences))

	mux.Handle("GET /api/chores", member(s.choreH.List))
	mux.Handle("POST /api/chores", member(s.choreH.Create))
	mux.Handle("GET /api/chores/stats", member(s.choreH.Stats))
	mux.Handle("GET /api/chores/completions", member(s.choreH.Completions))
	mux.Handle("GET /api/chores/{id}", member(s.choreH.Get))
	mux.Handle("PUT /api/chores/{id}", member(s.choreH.Update))
	mux.Handle("DELETE /api/chores/{id}", member(s.choreH.Delete))
	mux.Handle("POST /api/chores/{id}/complete", member(s.choreH.Complete))

	mux.Handle("GET /api/bills", member(s.billH.List))
	mux.Handle("GET /api/bills/upcoming", member(s.billH.Upcoming))
	mux.Handle("POST /api/bills/{id}/paid", member(s.billH.MarkPaid))

	mux.Handle("GET /api/waste", member(s.wasteH.List))
	mux.Handle("GET /api/waste/next", member(s.wasteH.Next))

	mux.Handle("GET /api/expenses", member(s.expenseH.List))
	mux.Handle("POST /api/expenses", member(s.expenseH.Create))
	mux.Handle("GET /api/expenses/summary", member(s.expenseH.Summary))
	mux.Handle("GET /api/expenses/suggest-category", member(s.expenseH.SuggestCategory))
	mux.Handle("GET /api/expenses/{id}", member(s.expenseH.Get))
	mux.Handle("PUT /api/expenses/{id}", member(s.expenseH.Update))
	mux.Handle("DELETE /api/expenses/{id}", member(s.expenseH.Delete))
	mux.Handle("GET /api/categories", member(s.expenseH.Categories))

	mux.Handle("GET /ws", member(ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket"), s.originPatterns)))

	// Admins only
	mux.Handle("POST /api/household/invite-code", admin(s.householdH.RegenerateInviteCode))
	mux.Handle("PUT /api/household/budget", admin(s.householdH.UpdateBudget))
	mux.Handle("POST /api/household/invite", admin(s.householdH.Invite))
	mux.Handle("POST /api/household/members/{id}/promote", admin(s.householdH.Promote))
	mux.Handle("DELETE /api/household/members/{id}", admin(s.householdH.RemoveMember))

	mux.Handle("POST /api/bills", admin(s.billH.Create))
	mux.Handle("PUT /api/bills/{id}", admin(s.billH.Update))
	mux.Handle("DELETE /api/bills/{id}", admin(s.billH.Delete))

	mux.Handle("POST /api/waste", admin(s.wasteH.Create))
	mux.Handle("PUT /api/waste/{id}", admin(s.wasteH.Update))
	mux.Handle("POST /api/waste/{id}/toggle", admin(s.wasteH.Toggle))
	mux.Handle("DELETE /api/waste/{id}", admin(s.wasteH.Delete))

	mux.Handle("POST /api/categories", admin(s.expenseH.CreateCategory))
	mux.Handle("PUT /api/categories/{id}", admin(s.expenseH.UpdateCategory))
	mux.Handle("DELETE /api/categories/{id}", admin(s.expenseH.DeleteCategory))

	// Authenticate runs first so the request log carries the user id.
	logged := middleware.RequestLogger(s.logger.With("component", "http"))(mux)
	return middleware.Authenticate(s.sessionStore, s.householdStore, s.logger.With("component", "auth"))(logged)
}

func authed(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(h)
}

func member(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(middleware.RequireHousehold(h))
}

func admin(h http.HandlerFunc) http.Handler {
	return middleware.RequireAuth(middleware.RequireHousehold(middleware.RequireAdmin(h)))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.ByIP, authRateLimit, authRateWindow)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/devitsbeka/foodvault/internal/auth"
	"github.com/devitsbeka/foodvault/internal/backup"
	"github.com/devitsbeka/foodvault/internal/email"
	"github.com/devitsbeka/foodvault/internal/handler"
	"github.com/devitsbeka/foodvault/internal/invite"
	"github.com/devitsbeka/foodvault/internal/middleware"
	"github.com/devitsbeka/foodvault/internal/notify"
	"github.com/devitsbeka/foodvault/internal/push"
	"github.com/devitsbeka/foodvault/internal/recipes"
	"github.com/devitsbeka/foodvault/internal/review"
	"github.com/devitsbeka/foodvault/internal/store"
	ws "github.com/devitsbeka/foodvault/internal/websocket"
)

// inviteTTL bounds how long a mailed invite token stays redeemable.
const inviteTTL = 7 * 24 * time.Hour

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	familyH      *handler.FamilyHandler
	listH        *handler.ListHandler
	inventoryH   *handler.InventoryHandler
	reviewH      *handler.ReviewHandler
	recipeH      *handler.RecipeHandler
	pushH        *handler.PushHandler
	backupH      *handler.BackupHandler
	sessionStore *store.SessionStore
	userStore    *store.UserStore
	pushStore    *store.PushStore
	rateLimiter  *middleware.RateLimiter
	backupMgr    *backup.Manager
	pushSched    *push.Scheduler
	adminEmail   string
	logger       *slog.Logger
}

func New(db *sql.DB, emailClient *email.Client, inviteSecret, adminEmail string, backupCfg backup.Config, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	familyStore := store.NewFamilyStore(db)
	listStore := store.NewListStore(db)
	inventoryStore := store.NewInventoryStore(db)
	reviewStore := store.NewReviewStore(db)
	recipeStore := store.NewRecipeStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	backupLogger := logger.With("component", "backup")
	backupMgr := backup.NewManager(backupCfg, db, backupStore, func(st backup.Status) {
		backupLogger.Info("backup status changed",
			"state", st.State,
			"in_progress", st.InProgress,
			"error", st.Error)
	}, backupLogger)

	// Push delivery only runs with VAPID keys; subscription management
	// stays available either way.
	var pushSvc *push.Service
	var pushSched *push.Scheduler
	if pushCfg.Enabled() {
		pushSvc = push.NewService(pushCfg)
		pushSched = push.NewScheduler(pushSvc, pushStore, inventoryStore, logger.With("component", "push"))
	}

	notifier := notify.New(hub, pushSched, familyStore, listStore, logger.With("component", "notify"))
	reviewSvc := review.NewService(db, familyStore, listStore, inventoryStore, reviewStore, notifier, logger.With("component", "review"))
	recipesSvc := recipes.NewService(recipeStore, inventoryStore, recipes.NewMealDBClient())
	issuer := invite.NewIssuer(inviteSecret, inviteTTL)

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		familyH:      handler.NewFamilyHandler(db, familyStore, userStore, issuer, emailClient, logger.With("component", "family")),
		listH:        handler.NewListHandler(listStore, familyStore, notifier, logger.With("component", "list")),
		inventoryH:   handler.NewInventoryHandler(inventoryStore, logger.With("component", "inventory")),
		reviewH:      handler.NewReviewHandler(reviewSvc, reviewStore, inventoryStore, logger.With("component", "review_handler")),
		recipeH:      handler.NewRecipeHandler(recipeStore, recipesSvc, logger.With("component", "recipe")),
		pushH:        handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler")),
		backupH:      handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		sessionStore: sessionStore,
		userStore:    userStore,
		pushStore:    pushStore,
		rateLimiter:  middleware.NewRateLimiter(),
		backupMgr:    backupMgr,
		pushSched:    pushSched,
		adminEmail:   adminEmail,
		logger:       logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// PushStore returns the push store for cleanup tasks.
func (s *Server) PushStore() *store.PushStore {
	return s.pushStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupMgr
}

// PushScheduler returns the push scheduler, nil without VAPID keys.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushSched
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.ipRateLimited(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.ipRateLimited(s.authH.Login))
	outerMux.HandleFunc("GET /api/shared/{token}", s.listH.Shared)
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Everything else requires a session.
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.adminEmail)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ipRateLimited throttles unauthenticated endpoints by client address.
func (s *Server) ipRateLimited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

// userRateLimited throttles authenticated endpoints per user.
func (s *Server) userRateLimited(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return "user:" + strconv.FormatInt(auth.UserID(r.Context()), 10)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 30, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(h).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Session and profile
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)
	mux.HandleFunc("PUT /api/auth/me", s.authH.UpdateMe)
	mux.HandleFunc("PUT /api/auth/password", s.authH.ChangePassword)

	// Families and membership
	mux.HandleFunc("POST /api/families", s.familyH.Create)
	mux.HandleFunc("GET /api/families", s.familyH.List)
	mux.HandleFunc("GET /api/families/{id}", s.familyH.Get)
	mux.HandleFunc("PUT /api/families/{id}", s.familyH.Update)
	mux.HandleFunc("DELETE /api/families/{id}", s.familyH.Delete)
	mux.HandleFunc("PUT /api/families/{id}/members/{user_id}", s.familyH.UpdateMemberRole)
	mux.HandleFunc("DELETE /api/families/{id}/members/{user_id}", s.familyH.RemoveMember)
	mux.HandleFunc("POST /api/families/{id}/invites", s.familyH.Invite)
	mux.HandleFunc("POST /api/invites/accept", s.familyH.AcceptInvite)

	// Shopping lists and items
	mux.HandleFunc("POST /api/lists", s.listH.Create)
	mux.HandleFunc("GET /api/lists", s.listH.List)
	mux.HandleFunc("GET /api/lists/{id}", s.listH.Get)
	mux.HandleFunc("PUT /api/lists/{id}", s.listH.Update)
	mux.HandleFunc("DELETE /api/lists/{id}", s.listH.Delete)
	mux.HandleFunc("GET /api/lists/{id}/items", s.listH.Items)
	mux.HandleFunc("POST /api/lists/{id}/items", s.listH.AddItem)
	mux.HandleFunc("POST /api/lists/{id}/clear-bought", s.listH.ClearBought)
	mux.HandleFunc("POST /api/lists/{id}/share", s.listH.Share)
	mux.HandleFunc("DELETE /api/lists/{id}/share", s.listH.Unshare)
	mux.HandleFunc("PUT /api/items/{id}", s.listH.UpdateItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.listH.DeleteItem)
	mux.HandleFunc("PUT /api/items/{id}/status", s.listH.SetItemStatus)

	// Kitchen inventory
	mux.HandleFunc("POST /api/inventory", s.inventoryH.Create)
	mux.HandleFunc("GET /api/inventory", s.inventoryH.List)
	mux.HandleFunc("GET /api/inventory/expiring", s.inventoryH.Expiring)
	mux.HandleFunc("GET /api/inventory/{id}", s.inventoryH.Get)
	mux.HandleFunc("PUT /api/inventory/{id}", s.inventoryH.Update)
	mux.HandleFunc("DELETE /api/inventory/{id}", s.inventoryH.Delete)

	// Review workflow
	mux.HandleFunc("POST /api/review", s.userRateLimited(s.reviewH.Propose))
	mux.HandleFunc("GET /api/review/pending", s.reviewH.Pending)
	mux.HandleFunc("GET /api/review/mine", s.reviewH.Mine)
	mux.HandleFunc("GET /api/review/{id}", s.reviewH.Get)
	mux.HandleFunc("POST /api/review/{id}/approve", s.reviewH.Approve)
	mux.HandleFunc("POST /api/review/{id}/reject", s.reviewH.Reject)
	mux.HandleFunc("POST /api/review/{id}/vote", s.reviewH.Vote)

	// Recipes and recommendations
	mux.HandleFunc("POST /api/recipes", s.recipeH.Create)
	mux.HandleFunc("GET /api/recipes", s.recipeH.List)
	mux.HandleFunc("GET /api/recipes/recommendations", s.recipeH.Recommendations)
	mux.HandleFunc("GET /api/recipes/search", s.recipeH.Search)
	mux.HandleFunc("POST /api/recipes/import", s.recipeH.Import)
	mux.HandleFunc("GET /api/recipes/{id}", s.recipeH.Get)
	mux.HandleFunc("PUT /api/recipes/{id}", s.recipeH.Update)
	mux.HandleFunc("DELETE /api/recipes/{id}", s.recipeH.Delete)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// Admin: backups
	mux.Handle("GET /api/admin/backups", middleware.RequireAdmin(http.HandlerFunc(s.backupH.List)))
	mux.Handle("POST /api/admin/backups", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Trigger)))
	mux.Handle("GET /api/admin/backups/status", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Status)))
	mux.Handle("POST /api/admin/backups/{id}/restore", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Restore)))
	mux.Handle("GET /api/admin/backups/{id}/download", middleware.RequireAdmin(http.HandlerFunc(s.backupH.Download)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}

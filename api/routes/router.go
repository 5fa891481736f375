package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/credeat/credeat-backend/api/controllers"
	"github.com/credeat/credeat-backend/api/middleware"
	analyticsvc "github.com/credeat/credeat-backend/internal/analytics"
	"github.com/credeat/credeat-backend/internal/auth"
	complaintsvc "github.com/credeat/credeat-backend/internal/complaints"
	"github.com/credeat/credeat-backend/internal/ledger"
	mealsvc "github.com/credeat/credeat-backend/internal/meals"
	walletsvc "github.com/credeat/credeat-backend/internal/wallet"
	"github.com/credeat/credeat-backend/pkg/auth/session"
	"github.com/credeat/credeat-backend/pkg/config"
	"github.com/credeat/credeat-backend/pkg/db"
	"github.com/credeat/credeat-backend/pkg/logger"
	"github.com/credeat/credeat-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         db.Pinger
	Redis      *redis.Client
	Sessions   session.AccessSessionChecker
	Gatherer   prometheus.Gatherer
	Auth       auth.Service
	Register   auth.RegisterService
	Meals      *mealsvc.Service
	Reconciler *mealsvc.Reconciler
	Wallet     *walletsvc.Service
	Engine     ledger.Service
	Complaints *complaintsvc.Service
	Analytics  *analyticsvc.Service
}

// NewRouter assembles the full route tree.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", controllers.AuthLogin(deps.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg), middleware.Idempotency(deps.Redis, logg)).
			Post("/register", controllers.AuthRegister(deps.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))
		r.Get("/auth/me", controllers.AuthProfile(deps.Auth, logg))

		r.Route("/meals", func(r chi.Router) {
			r.Get("/", controllers.ListMeals(deps.Meals, logg))
			r.Get("/my-selections", controllers.MySelections(deps.Meals, logg))
			r.Post("/{mealId}/select", controllers.SelectMeal(deps.Reconciler, logg))
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/", controllers.WalletBalance(deps.Wallet, logg))
			r.Get("/transactions", controllers.WalletTransactions(deps.Wallet, logg))
			r.With(middleware.RequireRole("student", logg)).Post("/pay", controllers.WalletPay(deps.Engine, logg))
			r.With(middleware.RequireRole("vendor", logg)).Post("/withdraw", controllers.WalletWithdraw(deps.Engine, logg))
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", controllers.ListOwnComplaints(deps.Complaints, logg))
			r.Post("/", controllers.FileComplaint(deps.Complaints, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/meals", func(r chi.Router) {
			r.Post("/", controllers.CreateMeal(deps.Meals, logg))
			r.Patch("/{mealId}", controllers.UpdateMeal(deps.Meals, logg))
			r.Delete("/{mealId}", controllers.DeactivateMeal(deps.Meals, logg))
		})

		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", controllers.ListAllComplaints(deps.Complaints, logg))
			r.Post("/{complaintId}/status", controllers.UpdateComplaintStatus(deps.Complaints, logg))
		})

		r.Get("/analytics/wastage", controllers.WastageReport(deps.Analytics, logg))
	})

	return r
}

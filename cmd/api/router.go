package main

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/config"
	"github.com/toozhub/toozhub/internal/handlers"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/repo"
)

// newRouter wires repos, handlers and the middleware chain. Taking the DB
// and config as arguments keeps it constructible from tests. The audit
// dispatcher is returned so main can drain it on shutdown.
func newRouter(database *sql.DB, cfg config.Config) (*chi.Mux, *audit.Dispatcher) {
	customers := repo.NewCustomerRepo(database)
	vehicles := repo.NewVehicleRepo(database)
	records := repo.NewRecordRepo(database)
	auditRepo := repo.NewAuditRepo(database)
	settingsRepo := repo.NewSettingRepo(database)
	reminders := repo.NewReminderRepo(database)
	reservations := repo.NewReservationRepo(database)
	system := repo.NewSystemRepo(database)

	dispatcher := audit.NewDispatcher(auditRepo, cfg.SourceProject)

	authH := &handlers.AuthHandler{Customers: customers, Secret: []byte(cfg.JWTSecret), ExpireHours: cfg.JWTExpireHours}
	userH := &handlers.UserHandler{Repo: customers, Audit: dispatcher}
	vehicleH := &handlers.VehicleHandler{Repo: vehicles, Customers: customers, Audit: dispatcher}
	serviceH := &handlers.ServiceHandler{Repo: customers, Audit: dispatcher}
	recordH := &handlers.RecordHandler{Repo: records, Vehicles: vehicles, Audit: dispatcher}
	auditH := &handlers.AuditHandler{Repo: auditRepo}
	systemH := &handlers.SystemHandler{Repo: system}
	settingsH := &handlers.SettingsHandler{Repo: settingsRepo}
	portalH := &handlers.PortalHandler{
		Customers:    customers,
		Vehicles:     vehicles,
		Records:      records,
		Reminders:    reminders,
		Reservations: reservations,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	loginLimiter := middleware.LoginRateLimiter()
	r.With(loginLimiter.Middleware).Post("/user/login", authH.Login)
	r.With(loginLimiter.Middleware).Post("/user/register", authH.Register)

	// Admin surface: developer_admin only.
	r.Route("/admin-api", func(r chi.Router) {
		r.Use(middleware.JWT([]byte(cfg.JWTSecret)))
		r.Use(middleware.RequireRole(models.RoleDeveloperAdmin))

		r.Get("/overview", systemH.Overview)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userH.List)
			r.Post("/", userH.Create)
			r.Get("/{id}", userH.Get)
			r.Patch("/{id}", userH.Update)
			r.Delete("/{id}", userH.Delete)
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", vehicleH.List)
			r.Post("/", vehicleH.Create)
			r.Get("/{id}", vehicleH.Get)
			r.Patch("/{id}", vehicleH.Update)
			r.Delete("/{id}", vehicleH.Delete)
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", serviceH.List)
			r.Post("/", serviceH.Create)
			r.Get("/{id}", serviceH.Get)
			r.Patch("/{id}", serviceH.Update)
			r.Delete("/{id}", serviceH.Delete)
		})

		r.Route("/records", func(r chi.Router) {
			r.Get("/", recordH.List)
			r.Post("/", recordH.Create)
			r.Patch("/{id}", recordH.Update)
			r.Delete("/{id}", recordH.Delete)
		})

		r.Get("/audit", auditH.List)

		r.Get("/db-info", systemH.DBInfo)
		r.Post("/reindex", systemH.Reindex)
		r.Post("/repair", systemH.Repair)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", settingsH.Tree)
			r.Put("/", settingsH.Update)
			r.Post("/init-defaults", settingsH.InitDefaults)
			r.Delete("/{category}/{key}", settingsH.Delete)
		})
	})

	// End-user surface: any authenticated customer.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.JWT([]byte(cfg.JWTSecret)))

		r.Get("/me", portalH.Me)

		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", portalH.MyVehicles)
			r.Post("/", portalH.AddVehicle)
			r.Get("/{id}", portalH.MyVehicle)
			r.Put("/{id}", portalH.UpdateMyVehicle)
			r.Delete("/{id}", portalH.DeleteMyVehicle)
			r.Get("/{id}/records", portalH.MyVehicleRecords)
		})

		r.Route("/reminders", func(r chi.Router) {
			r.Get("/", portalH.MyReminders)
			r.Post("/", portalH.AddReminder)
			r.Patch("/{id}", portalH.SetReminderDone)
			r.Delete("/{id}", portalH.DeleteReminder)
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/my", portalH.MyReservations)
			r.Post("/", portalH.AddReservation)
			r.Delete("/{id}", portalH.CancelReservation)
		})
	})

	return r, dispatcher
}

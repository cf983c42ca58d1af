package e2e

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/toozhub/toozhub/internal/audit"
	"github.com/toozhub/toozhub/internal/config"
	"github.com/toozhub/toozhub/internal/db"
	"github.com/toozhub/toozhub/internal/handlers"
	"github.com/toozhub/toozhub/internal/middleware"
	"github.com/toozhub/toozhub/internal/models"
	"github.com/toozhub/toozhub/internal/portalweb"
	"github.com/toozhub/toozhub/internal/repo"
)

/*
 * Black-box suite driving the whole stack: a throwaway Postgres container,
 * the API and the end-user portal, all over real HTTP.
 *
 * Two modes:
 *   - local (default): everything runs in-process against a container.
 *   - external: BASE_URL points at a deployed API (PORTAL_URL at its portal);
 *     only the smoke tests run, and E2E_READONLY=1 blocks all writes.
 */

const (
	adminEmail    = "admin@toozhub.example"
	adminPassword = "admin-e2e-1234"
	jwtSecret     = "e2e-only-signing-key"
)

var (
	apiURL    string
	portalURL string
	database  *sql.DB
	external  bool
	readOnly  bool
)

func TestMain(m *testing.M) {
	ro := os.Getenv("E2E_READONLY")
	readOnly = ro == "1" || ro == "true"

	if base := os.Getenv("BASE_URL"); base != "" {
		external = true
		apiURL = strings.TrimRight(base, "/")
		portalURL = apiURL
		if p := os.Getenv("PORTAL_URL"); p != "" {
			portalURL = strings.TrimRight(p, "/")
		}
		os.Exit(m.Run())
	}

	ctx := context.Background()
	pg, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("toozhub"),
		tcpostgres.WithUsername("toozhub"),
		tcpostgres.WithPassword("toozhub"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		os.Exit(1)
	}

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "connection string: %v\n", err)
		os.Exit(1)
	}
	if err := db.Run(dsn); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	database, err = sql.Open("postgres", dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	if err := seedAdmin(database); err != nil {
		fmt.Fprintf(os.Stderr, "seed admin: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Config{
		JWTSecret:      jwtSecret,
		JWTExpireHours: 1,
		SourceProject:  "TOOZ_HUB_E2E",
	}
	apiSrv := httptest.NewServer(newAPIRouter(database, cfg))
	portalSrv := httptest.NewServer(portalweb.New(apiSrv.URL))
	apiURL = apiSrv.URL
	portalURL = portalSrv.URL

	code := m.Run()

	portalSrv.Close()
	apiSrv.Close()
	database.Close()
	_ = testcontainers.TerminateContainer(pg)
	os.Exit(code)
}

// newAPIRouter mirrors the API binary's wiring so the suite exercises the
// same middleware chain and handler set the deployment runs.
func newAPIRouter(database *sql.DB, cfg config.Config) *chi.Mux {
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
	r.Use(middleware.SecurityHeaders(false))
	r.Use(middleware.CORS(nil))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method("GET", "/metrics", promhttp.Handler())

	// Relaxed limits: the suite signs in far more often than a browser would.
	limiter := middleware.NewIPRateLimiter(rate.Limit(1000), 1000)
	r.With(limiter.Middleware).Post("/user/login", authH.Login)
	r.With(limiter.Middleware).Post("/user/register", authH.Register)

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

	return r
}

func seedAdmin(database *sql.DB) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = database.Exec(`
		INSERT INTO customers (email, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
	`, adminEmail, "E2E Admin", string(hash), models.RoleDeveloperAdmin)
	return err
}

// requireLocalStack skips tests that need the in-process stack (seeded
// credentials, direct DB access) when pointed at an external deployment.
func requireLocalStack(t *testing.T) {
	t.Helper()
	if external {
		t.Skip("local-stack test; skipped against an external deployment")
	}
}

type credentials struct {
	email    string
	password string
}

// externalCredentials reads the account to use against a deployed stack.
func externalCredentials(t *testing.T) credentials {
	t.Helper()
	email := os.Getenv("E2E_EMAIL")
	password := os.Getenv("E2E_PASSWORD")
	if email == "" || password == "" {
		t.Skip("E2E_EMAIL and E2E_PASSWORD not set")
	}
	return credentials{email: email, password: password}
}

// skipIfReadOnly guards every mutating test in external mode.
func skipIfReadOnly(t *testing.T) {
	t.Helper()
	if readOnly {
		t.Skip("E2E_READONLY is set; skipping mutation")
	}
}

// newBrowser returns an HTTP client that keeps cookies across requests,
// standing in for a browser session against the portal.
func newBrowser(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar, Timeout: 30 * time.Second}
}

// fetch GETs a page and returns its body.
func fetch(t *testing.T, client *http.Client, pageURL string) string {
	t.Helper()
	resp, err := client.Get(pageURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// submitForm POSTs form values and returns the final page after redirects.
func submitForm(t *testing.T, client *http.Client, action string, values url.Values) string {
	t.Helper()
	resp, err := client.PostForm(action, values)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

// portalLogin signs the browser session in through the portal login form.
func portalLogin(t *testing.T, client *http.Client, email, password string) string {
	t.Helper()
	return submitForm(t, client, portalURL+"/login", url.Values{
		"email":    {email},
		"password": {password},
	})
}

// registerPortalUser creates a fresh end-user account through the register
// form and leaves the browser logged in. Returns the new account's email.
func registerPortalUser(t *testing.T, client *http.Client) string {
	t.Helper()
	email := fmt.Sprintf("rider+%d@example.com", time.Now().UnixNano())
	body := submitForm(t, client, portalURL+"/register", url.Values{
		"email":    {email},
		"password": {"rider-pass-123"},
		"name":     {"Test Rider"},
	})
	requireTestID(t, body, "dashboard")
	return email
}

// loginAs logs in over the API and returns the bearer token.
func loginAs(t *testing.T, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	resp, err := http.Post(apiURL+"/user/login", "application/json", strings.NewReader(string(body)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

// adminToken logs the seeded developer_admin in.
func adminToken(t *testing.T) string {
	t.Helper()
	return loginAs(t, adminEmail, adminPassword)
}

// apiRequest performs an authenticated API call and returns body and status.
func apiRequest(t *testing.T, method, path, token string, payload interface{}) ([]byte, int) {
	t.Helper()
	var rd io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		rd = strings.NewReader(string(raw))
	}
	req, err := http.NewRequest(method, apiURL+path, rd)
	require.NoError(t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return body, resp.StatusCode
}

func sleepMillis(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

var optionValueRe = regexp.MustCompile(`<option value="(\d+)">`)

// firstVehicleOption pulls the first vehicle id out of the reservation form's
// select element.
func firstVehicleOption(t *testing.T, html string) string {
	t.Helper()
	m := optionValueRe.FindStringSubmatch(html)
	require.NotNil(t, m, "no vehicle option in page")
	return m[1]
}

// requireTestID asserts a tagged element is present in the page.
func requireTestID(t *testing.T, html, id string) {
	t.Helper()
	require.Contains(t, html, fmt.Sprintf("data-testid=%q", id), "expected element %q", id)
}

// requireNoErrorBanner asserts the global error alert is absent.
func requireNoErrorBanner(t *testing.T, html string) {
	t.Helper()
	require.NotContains(t, html, `data-testid="alert-error"`, "page shows an error banner")
}

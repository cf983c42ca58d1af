package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/toozhub/toozhub/internal/models"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "toozhub_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8000"
	envWebPort  = "TOOZHUB_WEB_PORT"
	envAPIURL   = "TOOZHUB_API_URL"
)

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/logout", logout)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(requireAuth(apiBase))
		r.Get("/", redirectDashboard)
		r.Get("/dashboard", dashboard(apiBase))
		r.Get("/users", usersList(apiBase))
		r.Get("/users/new", userCreateForm)
		r.Post("/users", userCreate(apiBase))
		r.Get("/users/{id}/edit", userEditForm(apiBase))
		r.Post("/users/{id}/edit", userUpdate(apiBase))
		r.Get("/users/{id}/delete", userDeleteConfirm(apiBase))
		r.Post("/users/{id}/delete", userDelete(apiBase))
		r.Get("/vehicles", vehiclesList(apiBase))
		r.Get("/vehicles/new", vehicleCreateForm)
		r.Post("/vehicles", vehicleCreate(apiBase))
		r.Get("/vehicles/{id}/edit", vehicleEditForm(apiBase))
		r.Post("/vehicles/{id}/edit", vehicleUpdate(apiBase))
		r.Post("/vehicles/{id}/delete", vehicleDelete(apiBase))
		r.Get("/services", servicesList(apiBase))
		r.Get("/services/new", serviceCreateForm)
		r.Post("/services", serviceCreate(apiBase))
		r.Get("/services/{id}/edit", serviceEditForm(apiBase))
		r.Post("/services/{id}/edit", serviceUpdate(apiBase))
		r.Post("/services/{id}/delete", serviceDelete(apiBase))
		r.Get("/records", recordsList(apiBase))
		r.Get("/records/new", recordCreateForm(apiBase))
		r.Post("/records", recordCreate(apiBase))
		r.Post("/records/{id}/delete", recordDelete(apiBase))
		r.Get("/audit", auditList(apiBase))
		r.Get("/system", systemPage(apiBase))
		r.Post("/system/reindex", systemTool(apiBase, "reindex"))
		r.Post("/system/repair", systemTool(apiBase, "repair"))
		r.Get("/settings", settingsPage(apiBase))
		r.Post("/settings", settingsSave(apiBase))
		r.Post("/settings/init-defaults", settingsInitDefaults(apiBase))
	})

	log.Printf("Admin dashboard running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// cookieToken returns the bearer token held in the session cookie, or "".
func cookieToken(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// requireAuth redirects to /login if the cookie is missing or if the API
// returns 401 (invalid/expired token).
func requireAuth(apiBase string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := cookieToken(r)
			if tok == "" {
				http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.Path), http.StatusFound)
				return
			}
			// Validate against the API so an expired token sends the user to
			// login before any section loads.
			_, status, _ := apiGet(apiBase, "/admin-api/overview", tok)
			if status == http.StatusUnauthorized {
				clearAuthAndRedirectToLogin(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func redirectDashboard(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if cookieToken(r) != "" {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", nil)
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Email and password are required"})
			return
		}

		body, _ := json.Marshal(map[string]string{"email": email, "password": password})
		resp, err := http.Post(apiBase+"/user/login", "application/json", strings.NewReader(string(body)))
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		defer resp.Body.Close()

		data, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			var errResp struct{ Error string }
			_ = json.Unmarshal(data, &errResp)
			msg := errResp.Error
			if msg == "" {
				msg = string(data)
			}
			renderTemplate(w, "login.html", map[string]string{"Error": msg})
			return
		}

		var out struct {
			AccessToken string `json:"access_token"`
			User        struct {
				Role string `json:"role"`
			} `json:"user"`
		}
		if err := json.Unmarshal(data, &out); err != nil || out.AccessToken == "" {
			renderTemplate(w, "login.html", map[string]string{"Error": "Invalid login response"})
			return
		}
		if out.User.Role != models.RoleDeveloperAdmin {
			renderTemplate(w, "login.html", map[string]string{"Error": "Admin access required"})
			return
		}

		next := r.URL.Query().Get("next")
		if next == "" {
			next = "/dashboard"
		}

		http.SetCookie(w, &http.Cookie{
			Name:     cookieName,
			Value:    out.AccessToken,
			Path:     "/",
			MaxAge:   24 * 3600,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		http.Redirect(w, r, next, http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/login", http.StatusFound)
}

// clearAuthAndRedirectToLogin clears the token cookie and redirects to login
// with next=current path. Call when the API returns 401.
func clearAuthAndRedirectToLogin(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	next := r.URL.Path
	if r.URL.RawQuery != "" {
		next += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/login?next="+url.QueryEscape(next), http.StatusFound)
}

// ====== API helpers ======

func apiDo(method, apiBase, path, token string, body []byte) ([]byte, int, error) {
	var rd io.Reader
	if body != nil {
		rd = strings.NewReader(string(body))
	}
	req, _ := http.NewRequest(method, apiBase+path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func apiGet(apiBase, path, token string) ([]byte, int, error) {
	return apiDo("GET", apiBase, path, token, nil)
}

func apiPost(apiBase, path, token string, body []byte) ([]byte, int, error) {
	return apiDo("POST", apiBase, path, token, body)
}

func apiPatch(apiBase, path, token string, body []byte) ([]byte, int, error) {
	return apiDo("PATCH", apiBase, path, token, body)
}

func apiPut(apiBase, path, token string, body []byte) ([]byte, int, error) {
	return apiDo("PUT", apiBase, path, token, body)
}

func apiDelete(apiBase, path, token string) ([]byte, int, error) {
	return apiDo("DELETE", apiBase, path, token, nil)
}

// apiErrorMessage extracts {"error":...} from an API body, falling back to the
// raw body truncated to something readable.
func apiErrorMessage(data []byte) string {
	var errResp struct{ Error string }
	_ = json.Unmarshal(data, &errResp)
	if errResp.Error != "" {
		return errResp.Error
	}
	msg := string(data)
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	return msg
}

// loadSection fetches an admin API path and unmarshals it into out. A 401
// triggers the login redirect; any other failure renders the section template
// with an inline error so one broken section never blocks the rest.
func loadSection(w http.ResponseWriter, r *http.Request, apiBase, path, tmpl string, out interface{}) bool {
	data, status, err := apiGet(apiBase, path, cookieToken(r))
	if err != nil {
		renderTemplate(w, tmpl, map[string]interface{}{"Error": err.Error()})
		return false
	}
	if status == http.StatusUnauthorized {
		clearAuthAndRedirectToLogin(w, r)
		return false
	}
	if status != http.StatusOK {
		renderTemplate(w, tmpl, map[string]interface{}{"Error": "API error: " + apiErrorMessage(data)})
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		renderTemplate(w, tmpl, map[string]interface{}{"Error": "Invalid API response"})
		return false
	}
	return true
}

// ====== Dashboard ======

func dashboard(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var overview struct {
			TotalUsers        int `json:"total_users"`
			TotalVehicles     int `json:"total_vehicles"`
			TotalServices     int `json:"total_services"`
			TotalRecords      int `json:"total_records"`
			TotalReservations int `json:"total_reservations"`
			TotalReminders    int `json:"total_reminders"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/overview", "dashboard.html", &overview) {
			return
		}
		renderTemplate(w, "dashboard.html", map[string]interface{}{"Overview": overview})
	}
}

// ====== Users ======

func usersList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out struct {
			Users []models.UserSummary `json:"users"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/users", "users.html", &out) {
			return
		}
		renderTemplate(w, "users.html", map[string]interface{}{"Users": out.Users})
	}
}

func userCreateForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "user_form.html", map[string]interface{}{
		"FormAction":  "/users",
		"SubmitLabel": "Create user",
		"IsCreate":    true,
	})
}

func userCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		payload := func(errMsg string) map[string]interface{} {
			return map[string]interface{}{
				"Error":       errMsg,
				"FormAction":  "/users",
				"SubmitLabel": "Create user",
				"IsCreate":    true,
			}
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			renderTemplate(w, "user_form.html", payload("Email and password are required"))
			return
		}
		body := map[string]interface{}{"email": email, "password": password}
		for _, f := range []string{"name", "city", "phone"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				body[f] = v
			}
		}
		raw, _ := json.Marshal(body)
		data, status, err := apiPost(apiBase, "/admin-api/users", cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "user_form.html", payload(err.Error()))
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			renderTemplate(w, "user_form.html", payload("API: "+apiErrorMessage(data)))
			return
		}
		http.Redirect(w, r, "/users", http.StatusFound)
	}
}

func userEditForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var user models.Customer
		if !loadSection(w, r, apiBase, "/admin-api/users/"+id, "user_form.html", &user) {
			return
		}
		renderTemplate(w, "user_form.html", map[string]interface{}{
			"User":        user,
			"FormAction":  "/users/" + id + "/edit",
			"SubmitLabel": "Save changes",
		})
	}
}

func userUpdate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body := map[string]interface{}{}
		for _, f := range []string{"name", "city", "phone", "role", "password"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				body[f] = v
			}
		}
		raw, _ := json.Marshal(body)
		data, status, err := apiPatch(apiBase, "/admin-api/users/"+id, cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "user_form.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "user_form.html", map[string]interface{}{
				"Error":       "API: " + apiErrorMessage(data),
				"FormAction":  "/users/" + id + "/edit",
				"SubmitLabel": "Save changes",
			})
			return
		}
		http.Redirect(w, r, "/users", http.StatusFound)
	}
}

func userDeleteConfirm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var user models.Customer
		if !loadSection(w, r, apiBase, "/admin-api/users/"+id, "user_delete_confirm.html", &user) {
			return
		}
		renderTemplate(w, "user_delete_confirm.html", map[string]interface{}{"User": user})
	}
}

func userDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, status, err := apiDelete(apiBase, "/admin-api/users/"+id, cookieToken(r))
		if err != nil {
			renderTemplate(w, "user_delete_confirm.html", map[string]interface{}{"Error": err.Error(), "UserID": id})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "user_delete_confirm.html", map[string]interface{}{
				"Error":  "Delete failed: " + apiErrorMessage(data),
				"UserID": id,
			})
			return
		}
		http.Redirect(w, r, "/users", http.StatusFound)
	}
}

// ====== Vehicles ======

func vehiclesList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out struct {
			Vehicles []models.Vehicle `json:"vehicles"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/vehicles", "vehicles.html", &out) {
			return
		}
		renderTemplate(w, "vehicles.html", map[string]interface{}{"Vehicles": out.Vehicles})
	}
}

func vehicleCreateForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "vehicle_form.html", map[string]interface{}{
		"FormAction":  "/vehicles",
		"SubmitLabel": "Create vehicle",
		"IsCreate":    true,
	})
}

func vehicleFormBody(r *http.Request) map[string]interface{} {
	body := map[string]interface{}{}
	for _, f := range []string{"user_email", "nickname", "brand", "model", "plate", "vin"} {
		if v := strings.TrimSpace(r.FormValue(f)); v != "" {
			body[f] = v
		}
	}
	if y := strings.TrimSpace(r.FormValue("year")); y != "" {
		if n, err := strconv.Atoi(y); err == nil {
			body["year"] = n
		}
	}
	return body
}

func vehicleCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		payload := func(errMsg string) map[string]interface{} {
			return map[string]interface{}{
				"Error":       errMsg,
				"FormAction":  "/vehicles",
				"SubmitLabel": "Create vehicle",
				"IsCreate":    true,
			}
		}
		body := vehicleFormBody(r)
		if body["user_email"] == nil {
			renderTemplate(w, "vehicle_form.html", payload("Owner email is required"))
			return
		}
		raw, _ := json.Marshal(body)
		data, status, err := apiPost(apiBase, "/admin-api/vehicles", cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "vehicle_form.html", payload(err.Error()))
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			renderTemplate(w, "vehicle_form.html", payload("API: "+apiErrorMessage(data)))
			return
		}
		http.Redirect(w, r, "/vehicles", http.StatusFound)
	}
}

func vehicleEditForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var vehicle models.Vehicle
		if !loadSection(w, r, apiBase, "/admin-api/vehicles/"+id, "vehicle_form.html", &vehicle) {
			return
		}
		renderTemplate(w, "vehicle_form.html", map[string]interface{}{
			"Vehicle":     vehicle,
			"FormAction":  "/vehicles/" + id + "/edit",
			"SubmitLabel": "Save changes",
		})
	}
}

func vehicleUpdate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		raw, _ := json.Marshal(vehicleFormBody(r))
		data, status, err := apiPatch(apiBase, "/admin-api/vehicles/"+id, cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "vehicle_form.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "vehicle_form.html", map[string]interface{}{
				"Error":       "API: " + apiErrorMessage(data),
				"FormAction":  "/vehicles/" + id + "/edit",
				"SubmitLabel": "Save changes",
			})
			return
		}
		http.Redirect(w, r, "/vehicles", http.StatusFound)
	}
}

func vehicleDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, status, err := apiDelete(apiBase, "/admin-api/vehicles/"+id, cookieToken(r))
		if err == nil && status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		http.Redirect(w, r, "/vehicles", http.StatusFound)
	}
}

// ====== Services ======

func servicesList(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out struct {
			Services []models.UserSummary `json:"services"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/services", "services.html", &out) {
			return
		}
		renderTemplate(w, "services.html", map[string]interface{}{"Services": out.Services})
	}
}

func serviceCreateForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "service_form.html", map[string]interface{}{
		"FormAction":  "/services",
		"SubmitLabel": "Create service shop",
		"IsCreate":    true,
	})
}

func serviceCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		payload := func(errMsg string) map[string]interface{} {
			return map[string]interface{}{
				"Error":       errMsg,
				"FormAction":  "/services",
				"SubmitLabel": "Create service shop",
				"IsCreate":    true,
			}
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		if email == "" || password == "" {
			renderTemplate(w, "service_form.html", payload("Email and password are required"))
			return
		}
		body := map[string]interface{}{"email": email, "password": password}
		for _, f := range []string{"name", "city", "phone", "ico"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				body[f] = v
			}
		}
		raw, _ := json.Marshal(body)
		data, status, err := apiPost(apiBase, "/admin-api/services", cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "service_form.html", payload(err.Error()))
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			renderTemplate(w, "service_form.html", payload("API: "+apiErrorMessage(data)))
			return
		}
		http.Redirect(w, r, "/services", http.StatusFound)
	}
}

func serviceEditForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var service models.Customer
		if !loadSection(w, r, apiBase, "/admin-api/services/"+id, "service_form.html", &service) {
			return
		}
		renderTemplate(w, "service_form.html", map[string]interface{}{
			"Service":     service,
			"FormAction":  "/services/" + id + "/edit",
			"SubmitLabel": "Save changes",
		})
	}
}

func serviceUpdate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body := map[string]interface{}{}
		for _, f := range []string{"name", "city", "phone", "ico", "password"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				body[f] = v
			}
		}
		raw, _ := json.Marshal(body)
		data, status, err := apiPatch(apiBase, "/admin-api/services/"+id, cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "service_form.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "service_form.html", map[string]interface{}{
				"Error":       "API: " + apiErrorMessage(data),
				"FormAction":  "/services/" + id + "/edit",
				"SubmitLabel": "Save changes",
			})
			return
		}
		http.Redirect(w, r, "/services", http.StatusFound)
	}
}

func serviceDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, status, err := apiDelete(apiBase, "/admin-api/services/"+id, cookieToken(r))
		if err == nil && status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		http.Redirect(w, r, "/services", http.StatusFound)
	}
}

// ====== Records ======

func recordsList(apiBase string) http.HandlerFunc {
	const pageSize = 20
	return func(w http.ResponseWriter, r *http.Request) {
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if n, err := strconv.Atoi(p); err == nil && n > 0 {
				page = n
			}
		}
		offset := (page - 1) * pageSize
		path := fmt.Sprintf("/admin-api/records?limit=%d&offset=%d", pageSize, offset)
		if v := r.URL.Query().Get("vehicle_id"); v != "" {
			path += "&vehicle_id=" + url.QueryEscape(v)
		}

		var out models.RecordPage
		if !loadSection(w, r, apiBase, path, "records.html", &out) {
			return
		}

		prevPage := 0
		if page > 1 {
			prevPage = page - 1
		}
		nextPage := 0
		if offset+len(out.Records) < out.Total {
			nextPage = page + 1
		}
		renderTemplate(w, "records.html", map[string]interface{}{
			"Records":  out.Records,
			"Total":    out.Total,
			"Page":     page,
			"PrevPage": prevPage,
			"NextPage": nextPage,
		})
	}
}

func recordCreateForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var vehicles struct {
			Vehicles []models.Vehicle `json:"vehicles"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/vehicles", "record_form.html", &vehicles) {
			return
		}
		var services struct {
			Services []models.UserSummary `json:"services"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/services", "record_form.html", &services) {
			return
		}
		renderTemplate(w, "record_form.html", map[string]interface{}{
			"Vehicles":    vehicles.Vehicles,
			"Services":    services.Services,
			"FormAction":  "/records",
			"SubmitLabel": "Create record",
		})
	}
}

func recordCreate(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body := map[string]interface{}{}
		for _, f := range []string{"performed_at", "description", "category", "note"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				body[f] = v
			}
		}
		for _, f := range []string{"vehicle_id", "service_id", "mileage"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				if n, err := strconv.Atoi(v); err == nil {
					body[f] = n
				}
			}
		}
		if v := strings.TrimSpace(r.FormValue("price")); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				body["price"] = f
			}
		}
		raw, _ := json.Marshal(body)
		data, status, err := apiPost(apiBase, "/admin-api/records", cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "record_form.html", map[string]interface{}{"Error": err.Error(), "FormAction": "/records", "SubmitLabel": "Create record"})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			renderTemplate(w, "record_form.html", map[string]interface{}{
				"Error":       "API: " + apiErrorMessage(data),
				"FormAction":  "/records",
				"SubmitLabel": "Create record",
			})
			return
		}
		http.Redirect(w, r, "/records", http.StatusFound)
	}
}

func recordDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, status, err := apiDelete(apiBase, "/admin-api/records/"+id, cookieToken(r))
		if err == nil && status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		http.Redirect(w, r, "/records", http.StatusFound)
	}
}

// ====== Audit ======

func auditList(apiBase string) http.HandlerFunc {
	const pageSize = 50
	return func(w http.ResponseWriter, r *http.Request) {
		entityType := r.URL.Query().Get("entity_type")
		action := r.URL.Query().Get("action")
		page := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if n, err := strconv.Atoi(p); err == nil && n > 0 {
				page = n
			}
		}
		offset := (page - 1) * pageSize
		path := fmt.Sprintf("/admin-api/audit?limit=%d&offset=%d", pageSize, offset)
		if entityType != "" {
			path += "&entity_type=" + url.QueryEscape(entityType)
		}
		if action != "" {
			path += "&action=" + url.QueryEscape(action)
		}

		var out models.AuditPage
		if !loadSection(w, r, apiBase, path, "audit.html", &out) {
			return
		}

		prevPage := 0
		if page > 1 {
			prevPage = page - 1
		}
		nextPage := 0
		if offset+len(out.Logs) < out.Total {
			nextPage = page + 1
		}
		renderTemplate(w, "audit.html", map[string]interface{}{
			"Logs":       out.Logs,
			"Total":      out.Total,
			"EntityType": entityType,
			"Action":     action,
			"Page":       page,
			"PrevPage":   prevPage,
			"NextPage":   nextPage,
		})
	}
}

// ====== System ======

func systemPage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var info struct {
			DBPath      string `json:"db_path"`
			TableCount  int    `json:"table_count"`
			TotalSizeKB int64  `json:"total_size_kb"`
			Tables      []struct {
				Name     string `json:"name"`
				RowCount int64  `json:"row_count"`
				SizeKB   int64  `json:"size_kb"`
			} `json:"tables"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/db-info", "system.html", &info) {
			return
		}
		renderTemplate(w, "system.html", map[string]interface{}{"Info": info})
	}
}

// systemTool runs reindex or repair on explicit button press only and renders
// the result lines.
func systemTool(apiBase, tool string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiPost(apiBase, "/admin-api/"+tool, cookieToken(r), []byte("{}"))
		if err != nil {
			renderTemplate(w, "system.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		var out struct {
			Message string   `json:"message"`
			Results []string `json:"results"`
			Success bool     `json:"success"`
		}
		if err := json.Unmarshal(data, &out); err != nil {
			renderTemplate(w, "system.html", map[string]interface{}{"Error": "Invalid API response"})
			return
		}
		payload := map[string]interface{}{
			"ToolMessage": out.Message,
			"ToolResults": out.Results,
			"ToolSuccess": out.Success,
		}
		if !out.Success {
			payload["Error"] = out.Message
		}
		renderTemplate(w, "system.html", payload)
	}
}

// ====== Settings ======

type settingRow struct {
	Category    string
	Key         string
	Value       string
	ValueType   string
	Description string
}

func settingsPage(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out struct {
			Settings map[string]map[string]struct {
				Value       interface{} `json:"value"`
				ValueType   string      `json:"value_type"`
				Description string      `json:"description"`
			} `json:"settings"`
		}
		if !loadSection(w, r, apiBase, "/admin-api/settings", "settings.html", &out) {
			return
		}

		var rows []settingRow
		for category, keys := range out.Settings {
			for key, s := range keys {
				rows = append(rows, settingRow{
					Category:    category,
					Key:         key,
					Value:       settingValueString(s.Value, s.ValueType),
					ValueType:   s.ValueType,
					Description: s.Description,
				})
			}
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Category != rows[j].Category {
				return rows[i].Category < rows[j].Category
			}
			return rows[i].Key < rows[j].Key
		})

		renderTemplate(w, "settings.html", map[string]interface{}{
			"Rows":  rows,
			"Saved": r.URL.Query().Get("saved") == "1",
		})
	}
}

// settingValueString renders a coerced setting value back to its form field
// representation.
func settingValueString(v interface{}, valueType string) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}

func settingsSave(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		// Field names are "category/key", value types ride along as
		// "type:category/key" hidden fields.
		var items []map[string]interface{}
		for name, vals := range r.PostForm {
			if strings.HasPrefix(name, "type:") || !strings.Contains(name, "/") || len(vals) == 0 {
				continue
			}
			parts := strings.SplitN(name, "/", 2)
			items = append(items, map[string]interface{}{
				"category":   parts[0],
				"key":        parts[1],
				"value":      vals[0],
				"value_type": r.PostForm.Get("type:" + name),
			})
		}
		raw, _ := json.Marshal(map[string]interface{}{"settings": items})
		data, status, err := apiPut(apiBase, "/admin-api/settings", cookieToken(r), raw)
		if err != nil {
			renderTemplate(w, "settings.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "settings.html", map[string]interface{}{"Error": "API: " + apiErrorMessage(data)})
			return
		}
		http.Redirect(w, r, "/settings?saved=1", http.StatusFound)
	}
}

func settingsInitDefaults(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, status, err := apiPost(apiBase, "/admin-api/settings/init-defaults", cookieToken(r), []byte("{}"))
		if err != nil {
			renderTemplate(w, "settings.html", map[string]interface{}{"Error": err.Error()})
			return
		}
		if status == http.StatusUnauthorized {
			clearAuthAndRedirectToLogin(w, r)
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "settings.html", map[string]interface{}{"Error": "API: " + apiErrorMessage(data)})
			return
		}
		http.Redirect(w, r, "/settings", http.StatusFound)
	}
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if name == "login.html" {
		t := template.Must(template.New("").Parse(string(content)))
		_ = t.ExecuteTemplate(w, "login", data)
		return
	}

	layout, _ := templatesFS.ReadFile("templates/layout.html")
	t := template.Must(template.New("").Parse(string(layout)))
	t = template.Must(t.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("template execute: %v", err)
	}
}

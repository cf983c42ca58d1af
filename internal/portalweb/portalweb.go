package portalweb

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/toozhub/toozhub/internal/models"
)

//go:embed templates
var templatesFS embed.FS

const cookieName = "toozhub_portal_token"

var tabs = []string{"vehicles", "add-vehicle", "reminders", "reservations", "profile"}

// New builds the portal router against the given API base URL. Kept separate
// from the binary so the end-to-end suite can run the portal in-process.
func New(apiBase string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/", landing)
	r.Post("/login", loginSubmit(apiBase))
	r.Post("/register", registerSubmit(apiBase))
	r.Get("/logout", logout)

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/dashboard", dashboard(apiBase))
		r.Post("/vehicles", vehicleAdd(apiBase))
		r.Post("/vehicles/{id}/delete", vehicleDelete(apiBase))
		r.Post("/reminders", reminderAdd(apiBase))
		r.Post("/reminders/{id}/done", reminderDone(apiBase))
		r.Post("/reminders/{id}/delete", reminderDelete(apiBase))
		r.Post("/reservations", reservationAdd(apiBase))
		r.Post("/reservations/{id}/cancel", reservationCancel(apiBase))
	})

	return r
}

func cookieToken(r *http.Request) string {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setToken(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   24 * 3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearToken(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
}

func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if cookieToken(r) == "" {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// landing shows the login page, or the dashboard when a session exists. A
// ?token= query parameter seeds the session on first load, matching the
// mobile app's hand-off link.
func landing(w http.ResponseWriter, r *http.Request) {
	if seed := r.URL.Query().Get("token"); seed != "" {
		setToken(w, seed)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
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
			renderTemplate(w, "login.html", map[string]interface{}{"Error": "Email and password are required"})
			return
		}
		token, errMsg := authCall(apiBase, "/user/login", map[string]string{"email": email, "password": password})
		if errMsg != "" {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": errMsg})
			return
		}
		setToken(w, token)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

func registerSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		name := strings.TrimSpace(r.FormValue("name"))
		if email == "" || password == "" {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": "Email and password are required", "ShowRegister": true})
			return
		}
		body := map[string]string{"email": email, "password": password}
		if name != "" {
			body["name"] = name
		}
		token, errMsg := authCall(apiBase, "/user/register", body)
		if errMsg != "" {
			renderTemplate(w, "login.html", map[string]interface{}{"Error": errMsg, "ShowRegister": true})
			return
		}
		setToken(w, token)
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	}
}

// authCall posts credentials to the API and returns the access token, or a
// user-facing error message.
func authCall(apiBase, path string, body map[string]string) (string, string) {
	raw, _ := json.Marshal(body)
	resp, err := http.Post(apiBase+path, "application/json", strings.NewReader(string(raw)))
	if err != nil {
		return "", "Cannot reach the server. Check your connection and try again."
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errResp struct{ Error string }
		_ = json.Unmarshal(data, &errResp)
		if errResp.Error != "" {
			return "", errResp.Error
		}
		return "", "Sign-in failed"
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &out); err != nil || out.AccessToken == "" {
		return "", "Invalid server response"
	}
	return out.AccessToken, ""
}

func logout(w http.ResponseWriter, r *http.Request) {
	clearToken(w)
	http.Redirect(w, r, "/", http.StatusFound)
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
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func apiErrorMessage(data []byte) string {
	var errResp struct{ Error string }
	_ = json.Unmarshal(data, &errResp)
	if errResp.Error != "" {
		return errResp.Error
	}
	return "Something went wrong"
}

// redirectMsg bounces back to a dashboard tab with a banner message.
func redirectMsg(w http.ResponseWriter, r *http.Request, tab, ok, errMsg string) {
	u := "/dashboard?tab=" + tab
	if ok != "" {
		u += "&msg=" + url.QueryEscape(ok)
	}
	if errMsg != "" {
		u += "&err=" + url.QueryEscape(errMsg)
	}
	http.Redirect(w, r, u, http.StatusFound)
}

// mutate runs a JSON mutation against the end-user API and bounces back to
// the given tab. A 401 clears the session.
func mutate(w http.ResponseWriter, r *http.Request, apiBase, method, path, tab, okMsg string, body interface{}) {
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	data, status, err := apiDo(method, apiBase, path, cookieToken(r), raw)
	if err != nil {
		redirectMsg(w, r, tab, "", "Cannot reach the server. Check your connection and try again.")
		return
	}
	if status == http.StatusUnauthorized {
		clearToken(w)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		redirectMsg(w, r, tab, "", apiErrorMessage(data))
		return
	}
	redirectMsg(w, r, tab, okMsg, "")
}

// ====== Dashboard ======

func dashboard(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tab := r.URL.Query().Get("tab")
		valid := false
		for _, t := range tabs {
			if t == tab {
				valid = true
				break
			}
		}
		if !valid {
			tab = "vehicles"
		}
		tok := cookieToken(r)

		payload := map[string]interface{}{
			"Tab":     tab,
			"Message": r.URL.Query().Get("msg"),
			"Error":   r.URL.Query().Get("err"),
		}

		// Profile is always loaded for the header; a 401 on it means the
		// session expired.
		var me models.Customer
		data, status, err := apiDo("GET", apiBase, "/api/v1/me", tok, nil)
		if err != nil {
			payload["Error"] = "Cannot reach the server. Check your connection and try again."
			renderTemplate(w, "dashboard.html", payload)
			return
		}
		if status == http.StatusUnauthorized {
			clearToken(w)
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		if status == http.StatusOK {
			_ = json.Unmarshal(data, &me)
		}
		payload["Me"] = me

		loadTab := func(path string, out interface{}) bool {
			data, status, err := apiDo("GET", apiBase, path, tok, nil)
			if err != nil || status != http.StatusOK {
				if payload["Error"] == "" {
					payload["Error"] = "Could not load this section"
				}
				return false
			}
			return json.Unmarshal(data, out) == nil
		}

		switch tab {
		case "vehicles", "add-vehicle", "reservations":
			var out struct {
				Vehicles []models.Vehicle `json:"vehicles"`
			}
			if loadTab("/api/v1/vehicles", &out) {
				payload["Vehicles"] = out.Vehicles
			}
			if tab == "reservations" {
				var res struct {
					Reservations []models.Reservation `json:"reservations"`
				}
				if loadTab("/api/v1/reservations/my", &res) {
					payload["Reservations"] = res.Reservations
				}
			}
		case "reminders":
			var out struct {
				Reminders []models.Reminder `json:"reminders"`
			}
			if loadTab("/api/v1/reminders", &out) {
				payload["Reminders"] = out.Reminders
			}
		}

		renderTemplate(w, "dashboard.html", payload)
	}
}

// ====== Vehicles ======

func vehicleAdd(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body := map[string]interface{}{}
		for _, f := range []string{"nickname", "brand", "model", "plate", "vin"} {
			if v := strings.TrimSpace(r.FormValue(f)); v != "" {
				body[f] = v
			}
		}
		if y := strings.TrimSpace(r.FormValue("year")); y != "" {
			if n, err := strconv.Atoi(y); err == nil {
				body["year"] = n
			}
		}
		if body["nickname"] == nil && body["brand"] == nil {
			redirectMsg(w, r, "add-vehicle", "", "Give the vehicle a name or a brand")
			return
		}
		mutate(w, r, apiBase, "POST", "/api/v1/vehicles", "vehicles", "Vehicle added", body)
	}
}

func vehicleDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mutate(w, r, apiBase, "DELETE", "/api/v1/vehicles/"+id, "vehicles", "Vehicle removed", nil)
	}
}

// ====== Reminders ======

func reminderAdd(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		text := strings.TrimSpace(r.FormValue("text"))
		if text == "" {
			redirectMsg(w, r, "reminders", "", "Reminder text is required")
			return
		}
		body := map[string]interface{}{"text": text}
		if d := strings.TrimSpace(r.FormValue("due_date")); d != "" {
			// Date input sends YYYY-MM-DD; the API wants RFC 3339.
			body["due_date"] = d + "T00:00:00Z"
		}
		if v := strings.TrimSpace(r.FormValue("vehicle_id")); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				body["vehicle_id"] = n
			}
		}
		mutate(w, r, apiBase, "POST", "/api/v1/reminders", "reminders", "Reminder added", body)
	}
}

func reminderDone(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		done := r.FormValue("done") != "false"
		mutate(w, r, apiBase, "PATCH", "/api/v1/reminders/"+id, "reminders", "Reminder updated",
			map[string]interface{}{"done": done})
	}
}

func reminderDelete(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mutate(w, r, apiBase, "DELETE", "/api/v1/reminders/"+id, "reminders", "Reminder removed", nil)
	}
}

// ====== Reservations ======

func reservationAdd(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		vehicleID, err := strconv.Atoi(strings.TrimSpace(r.FormValue("vehicle_id")))
		if err != nil {
			redirectMsg(w, r, "reservations", "", "Pick a vehicle")
			return
		}
		scheduled := strings.TrimSpace(r.FormValue("scheduled_at"))
		if scheduled == "" {
			redirectMsg(w, r, "reservations", "", "Pick a date and time")
			return
		}
		// datetime-local input sends 2026-01-15T10:00 without a zone.
		if len(scheduled) == len("2006-01-02T15:04") {
			scheduled += ":00Z"
		}
		body := map[string]interface{}{
			"vehicle_id":   vehicleID,
			"scheduled_at": scheduled,
		}
		if n := strings.TrimSpace(r.FormValue("note")); n != "" {
			body["note"] = n
		}
		mutate(w, r, apiBase, "POST", "/api/v1/reservations", "reservations", "Reservation created", body)
	}
}

func reservationCancel(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mutate(w, r, apiBase, "DELETE", "/api/v1/reservations/"+id, "reservations", "Reservation cancelled", nil)
	}
}

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	content, err := templatesFS.ReadFile("templates/" + name)
	if err != nil {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	t := template.Must(template.New("").Parse(string(content)))
	if err := t.ExecuteTemplate(w, strings.TrimSuffix(name, ".html"), data); err != nil {
		log.Printf("template execute: %v", err)
	}
}

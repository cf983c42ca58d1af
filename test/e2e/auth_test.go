package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPortalLogin_Success(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	body := portalLogin(t, browser, adminEmail, adminPassword)

	requireTestID(t, body, "dashboard")
	requireTestID(t, body, "btn-logout")
	requireNoErrorBanner(t, body)
}

func TestPortalLogin_WrongPassword(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	body := portalLogin(t, browser, adminEmail, "not-the-password")

	requireTestID(t, body, "alert-error")
	require.Contains(t, body, "invalid credentials")
	requireTestID(t, body, "login-form")
}

func TestPortalLogin_MissingFields(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	body := portalLogin(t, browser, "", "")

	requireTestID(t, body, "alert-error")
	requireTestID(t, body, "login-form")
}

func TestPortalRegister_ThenLogout(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	registerPortalUser(t, browser)

	// After logout the dashboard must be gone.
	body := fetch(t, browser, portalURL+"/logout")
	requireTestID(t, body, "login-form")

	body = fetch(t, browser, portalURL+"/dashboard")
	requireTestID(t, body, "login-form")
}

func TestAdminSurface_RejectsEndUserRole(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	email := registerPortalUser(t, browser)

	// The freshly registered account has role user; log in over the API and
	// poke the admin surface directly.
	token := loginAs(t, email, "rider-pass-123")
	_, status := apiRequest(t, http.MethodGet, "/admin-api/users", token, nil)
	require.Equal(t, http.StatusForbidden, status)
}

func TestAdminSurface_RejectsMissingToken(t *testing.T) {
	requireLocalStack(t)

	_, status := apiRequest(t, http.MethodGet, "/admin-api/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)

	_, status = apiRequest(t, http.MethodGet, "/api/v1/vehicles", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

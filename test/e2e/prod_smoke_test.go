package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// Read-only checks against a deployed stack. They run only when BASE_URL is
// set and never write, so they are safe with E2E_READONLY=1.

func TestSmoke_APIHealth(t *testing.T) {
	if !external {
		t.Skip("smoke tests run against BASE_URL only")
	}

	resp, err := http.Get(apiURL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSmoke_LoginPageRenders(t *testing.T) {
	if !external {
		t.Skip("smoke tests run against BASE_URL only")
	}

	browser := newBrowser(t)
	body := fetch(t, browser, portalURL+"/")
	requireTestID(t, body, "login-form")
	requireTestID(t, body, "input-email")
	requireTestID(t, body, "input-password")
	requireTestID(t, body, "btn-login")
	require.Contains(t, body, "width=device-width")
}

func TestSmoke_UnauthenticatedAPIRejected(t *testing.T) {
	if !external {
		t.Skip("smoke tests run against BASE_URL only")
	}

	_, status := apiRequest(t, http.MethodGet, "/admin-api/overview", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
}

func TestSmoke_LoginWhenAllowed(t *testing.T) {
	if !external {
		t.Skip("smoke tests run against BASE_URL only")
	}
	skipIfReadOnly(t)

	creds := externalCredentials(t)
	browser := newBrowser(t)
	body := portalLogin(t, browser, creds.email, creds.password)
	requireTestID(t, body, "dashboard")
	requireNoErrorBanner(t, body)
}

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toozhub/toozhub/internal/models"
)

func TestAddVehicle_RoundTrip(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	email := registerPortalUser(t, browser)

	body := submitForm(t, browser, portalURL+"/vehicles", url.Values{
		"nickname": {"Red Rocket"},
		"brand":    {"Skoda"},
		"model":    {"Octavia"},
		"plate":    {"1AB 2345"},
		"year":     {"2019"},
	})
	requireTestID(t, body, "alert-success")
	requireTestID(t, body, "vehicle-card")
	require.Contains(t, body, "Red Rocket")
	require.Contains(t, body, "1AB 2345")
	requireNoErrorBanner(t, body)

	// The same vehicle must come back over the API, owner-scoped.
	token := loginAs(t, email, "rider-pass-123")
	raw, status := apiRequest(t, http.MethodGet, "/api/v1/vehicles", token, nil)
	require.Equal(t, http.StatusOK, status)

	var out struct {
		Vehicles []models.Vehicle `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Vehicles, 1)
	require.Equal(t, "Red Rocket", *out.Vehicles[0].Nickname)
	require.Equal(t, email, out.Vehicles[0].UserEmail)
}

func TestAddVehicle_MissingNameShowsError(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	registerPortalUser(t, browser)

	body := submitForm(t, browser, portalURL+"/vehicles", url.Values{
		"plate": {"9XY 0000"},
	})
	requireTestID(t, body, "alert-error")
}

func TestVehicleOwnership_NotYoursIsNotFound(t *testing.T) {
	requireLocalStack(t)

	// First rider creates a vehicle.
	owner := newBrowser(t)
	ownerEmail := registerPortalUser(t, owner)
	submitForm(t, owner, portalURL+"/vehicles", url.Values{"nickname": {"Mine"}})

	ownerToken := loginAs(t, ownerEmail, "rider-pass-123")
	raw, status := apiRequest(t, http.MethodGet, "/api/v1/vehicles", ownerToken, nil)
	require.Equal(t, http.StatusOK, status)
	var out struct {
		Vehicles []models.Vehicle `json:"vehicles"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Vehicles)
	vehicleID := out.Vehicles[0].ID

	// A second rider sees 404, indistinguishable from a missing vehicle.
	stranger := newBrowser(t)
	strangerEmail := registerPortalUser(t, stranger)
	strangerToken := loginAs(t, strangerEmail, "rider-pass-123")

	_, status = apiRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/vehicles/%d", vehicleID), strangerToken, nil)
	require.Equal(t, http.StatusNotFound, status)

	_, status = apiRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/vehicles/%d", vehicleID), strangerToken, nil)
	require.Equal(t, http.StatusNotFound, status)
}

func TestRemindersAndReservations_RoundTrip(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	registerPortalUser(t, browser)
	submitForm(t, browser, portalURL+"/vehicles", url.Values{"nickname": {"Booked One"}})

	body := submitForm(t, browser, portalURL+"/reminders", url.Values{
		"text":     {"Change winter tyres"},
		"due_date": {"2026-11-01"},
	})
	requireTestID(t, body, "alert-success")
	require.Contains(t, body, "Change winter tyres")

	// Reservations need the vehicle id; read it from the API.
	raw := fetch(t, browser, portalURL+"/dashboard?tab=reservations")
	requireTestID(t, raw, "reservations-container")

	body = submitForm(t, browser, portalURL+"/reservations", url.Values{
		"vehicle_id":   {firstVehicleOption(t, raw)},
		"scheduled_at": {"2026-10-01T09:30"},
		"note":         {"Brake check"},
	})
	requireTestID(t, body, "alert-success")
	require.Contains(t, body, "pending")
	require.Contains(t, body, "Brake check")
}

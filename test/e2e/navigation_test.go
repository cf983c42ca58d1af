package e2e

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Every dashboard tab must render its tagged container without tripping the
// global error banner, independently of the other tabs.
func TestDashboardTabs_AllRender(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	registerPortalUser(t, browser)

	cases := []struct {
		tab       string
		tabID     string
		container string
	}{
		{"vehicles", "vehicles-tab", "vehicles-container"},
		{"add-vehicle", "add-vehicle-tab", "add-vehicle-form"},
		{"reminders", "reminders-tab", "reminders-container"},
		{"reservations", "reservations-tab", "reservations-container"},
		{"profile", "profile-tab", "profile-container"},
	}

	for _, tc := range cases {
		t.Run(tc.tab, func(t *testing.T) {
			body := fetch(t, browser, portalURL+"/dashboard?tab="+tc.tab)
			requireTestID(t, body, "dashboard")
			requireTestID(t, body, tc.tabID)
			requireTestID(t, body, tc.container)
			requireNoErrorBanner(t, body)
		})
	}
}

func TestDashboard_UnknownTabFallsBackToVehicles(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	registerPortalUser(t, browser)

	body := fetch(t, browser, portalURL+"/dashboard?tab=nonsense")
	requireTestID(t, body, "vehicles-tab")
	requireNoErrorBanner(t, body)
}

// The dashboard is a responsive single column; the viewport meta tag is what
// the mobile variants of the suite key on.
func TestDashboard_MobileViewport(t *testing.T) {
	requireLocalStack(t)

	browser := newBrowser(t)
	registerPortalUser(t, browser)

	body := fetch(t, browser, portalURL+"/dashboard")
	require.Contains(t, body, `name="viewport"`)
	require.Contains(t, body, "width=device-width")

	// All five tab triggers stay reachable on small screens.
	for _, id := range []string{"tab-vehicles", "tab-add-vehicle", "tab-reminders", "tab-reservations", "tab-profile"} {
		requireTestID(t, body, id)
	}
}

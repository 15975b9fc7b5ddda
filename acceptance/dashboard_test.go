package acceptance

import (
	"net/http"
	"testing"

	"github.com/openfleet/fleetman-backend/internal/idp"
)

func TestDashboardStats(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	vehicleID := createTestVehicle(t, ts, testOwner)

	w := ts.request(t, http.MethodPost, "/rentals", testOwner, map[string]any{
		"vehicleId":      vehicleID,
		"customerName":   "Jordan Smith",
		"startDate":      "2024-03-01",
		"endDate":        "2024-03-04",
		"dailyRateCents": 5000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("failed to create rental: %s", w.Body.String())
	}

	w = ts.request(t, http.MethodGet, "/dashboard/stats", testOwner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var stats struct {
		TotalVehicles  int `json:"totalVehicles"`
		ActiveRentals  int `json:"activeRentals"`
		RecentActivity []struct {
			Type string `json:"type"`
		} `json:"recentActivity"`
	}
	decode(t, w, &stats)

	if stats.TotalVehicles != 1 {
		t.Errorf("expected 1 vehicle, got %d", stats.TotalVehicles)
	}
	if stats.ActiveRentals != 1 {
		t.Errorf("expected 1 active rental, got %d", stats.ActiveRentals)
	}
	if len(stats.RecentActivity) == 0 {
		t.Error("expected recent activity entries")
	}

	// Stats are partitioned per owner.
	w = ts.request(t, http.MethodGet, "/dashboard/stats", "auth0|other-owner", nil)
	decode(t, w, &stats)
	if stats.TotalVehicles != 0 {
		t.Errorf("expected 0 vehicles for another owner, got %d", stats.TotalVehicles)
	}
}

func TestProfileSync(t *testing.T) {
	ts := NewTestServer(t)
	defer ts.Close()

	// The fake IDP keys userinfo by bearer token; the fake auth middleware
	// ignores the Authorization header, so both can be set independently.
	ts.IDP.AddUser("", &idp.UserInfo{
		Sub:   testOwner,
		Email: "owner@example.com",
		Name:  "Fleet Owner",
	})

	w := ts.request(t, http.MethodPost, "/me/sync", testOwner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	w = ts.request(t, http.MethodGet, "/me", testOwner, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var profile struct {
		SubjectID string `json:"subjectId"`
		Email     string `json:"email"`
		Name      string `json:"name"`
	}
	decode(t, w, &profile)

	if profile.SubjectID != testOwner {
		t.Errorf("expected subject %q, got %q", testOwner, profile.SubjectID)
	}
	if profile.Email != "owner@example.com" || profile.Name != "Fleet Owner" {
		t.Errorf("profile not synced: %+v", profile)
	}
}

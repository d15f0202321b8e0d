package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"InsureCost/models"
)

func TestLoginOpensDashboard(t *testing.T) {
	fb := newFakeBackend(t)
	td := newTestDashboard(t, fb, nil, 1)

	if v := td.Snapshot(); v.DashboardVisible() {
		t.Fatal("dashboard visible before login")
	}

	td.login(t, "admin")

	v := td.Snapshot()
	if !v.DashboardVisible() || v.Stage != models.StageLoggedIn {
		t.Fatalf("stage = %s, want logged_in", v.Stage)
	}
	if v.ActiveTab != models.TabPredict {
		t.Errorf("active tab = %q, want predict", v.ActiveTab)
	}
	if v.User == nil || v.User.Initials != "AD" || v.User.Name != "Admin" || v.User.RoleText != "Administrator" {
		t.Errorf("user badge = %+v", v.User)
	}
	if !v.Retrain.Visible {
		t.Error("retrain control hidden for an admin")
	}
	if v.Stats.TotalRecords != "1,338" || v.Stats.AvgClaim != "₹13,270.42" || v.Stats.MaxClaim != "₹63,770.43" {
		t.Errorf("stats = %+v", v.Stats)
	}
	if v.Stats.MinClaim != "₹1,121.87" || v.Stats.LastModelTrain != "Jan 15, 2024 at 10:30:00" {
		t.Errorf("supplementary stats = %+v", v.Stats)
	}
	if !strings.Contains(v.Stats.DBStatus, "1,338 rows") {
		t.Errorf("db status = %q", v.Stats.DBStatus)
	}
	if len(v.History.Items) != 1 || v.History.Items[0].Cost != "₹9,000.50" {
		t.Errorf("history = %+v", v.History)
	}
	if got := fb.count("/api/data/charts"); got != 0 {
		t.Errorf("charts loaded %d times before opening analytics", got)
	}

	stored, err := td.sessions.Load(context.Background(), testTabID)
	if err != nil || stored == nil || stored.Session.Username != "admin" {
		t.Errorf("stored session = %+v, %v", stored, err)
	}
}

func TestLoginFailures(t *testing.T) {
	t.Run("empty credentials", func(t *testing.T) {
		fb := newFakeBackend(t)
		td := newTestDashboard(t, fb, nil, 1)

		_, err := td.Login(context.Background(), "", "secret")
		var validationErr *models.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("Login() error = %v, want ValidationError", err)
		}
		if fb.count("/api/login") != 0 {
			t.Error("empty credentials reached the backend")
		}
		if v := td.Snapshot(); v.Login.Error != "Please enter both username and password" || v.Stage != models.StageLoggedOut {
			t.Errorf("login view = %+v, stage %s", v.Login, v.Stage)
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		fb := newFakeBackend(t)
		fb.hook("/api/login", func(_ int, w http.ResponseWriter, _ *http.Request) bool {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "Invalid username or password"}`))
			return false
		})
		td := newTestDashboard(t, fb, nil, 1)

		_, err := td.Login(context.Background(), "admin", "wrong")
		var authErr *models.AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("Login() error = %v, want AuthError", err)
		}
		if v := td.Snapshot(); v.Login.Error != "Invalid username or password" || v.DashboardVisible() {
			t.Errorf("login view = %+v, stage %s", v.Login, v.Stage)
		}
	})

	t.Run("backend unreachable", func(t *testing.T) {
		fb := newFakeBackend(t)
		td := newTestDashboard(t, fb, nil, 1)
		fb.srv.Close()

		_, err := td.Login(context.Background(), "admin", "admin123")
		var netErr *models.NetworkError
		if !errors.As(err, &netErr) || !netErr.Transport() {
			t.Fatalf("Login() error = %v, want transport NetworkError", err)
		}
		if v := td.Snapshot(); v.Login.Error != "Connection error. Please try again." {
			t.Errorf("login error = %q", v.Login.Error)
		}
	})
}

func TestRestoreFromSessionStorage(t *testing.T) {
	fb := newFakeBackend(t)
	first := newTestDashboard(t, fb, nil, 1)
	first.login(t, "doctor")

	var sawCookie bool
	fb.hook("/api/data/stats", func(_ int, _ http.ResponseWriter, r *http.Request) bool {
		if c, err := r.Cookie("session"); err == nil && c.Value == "backend-session" {
			sawCookie = true
		}
		return true
	})

	second := newTestDashboard(t, fb, first.sessions, 1)
	if err := second.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	second.Wait()

	v := second.Snapshot()
	if !v.DashboardVisible() || v.User == nil || v.User.Name != "Doctor" {
		t.Fatalf("restored view stage=%s user=%+v", v.Stage, v.User)
	}
	if fb.count("/api/login") != 1 {
		t.Error("restore logged in again")
	}
	if !sawCookie {
		t.Error("restored tab did not send the backend session cookie")
	}
}

func TestLogoutClearsSessionEvenWhenRevokeFails(t *testing.T) {
	fb := newFakeBackend(t)
	fb.set("/api/logout", http.StatusInternalServerError, `{"error": "boom"}`)
	td := newTestDashboard(t, fb, nil, 1)
	td.login(t, "admin")

	if err := td.SwitchTab("analytics"); err != nil {
		t.Fatalf("SwitchTab() error = %v", err)
	}
	td.Wait()
	if _, err := td.Submit(context.Background(), validForm()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	historyCalls := fb.count("/api/history")

	if err := td.Logout(context.Background()); err == nil {
		t.Error("Logout() should report the failed revoke")
	}

	v := td.Snapshot()
	if v.DashboardVisible() || v.User != nil || v.Prediction.Result != nil || v.Retrain.Visible {
		t.Errorf("view not reset after logout: %+v", v)
	}
	if td.Session() != nil {
		t.Error("session kept in memory")
	}
	if stored, _ := td.sessions.Load(context.Background(), testTabID); stored != nil {
		t.Error("session kept in storage")
	}
	if n := td.renderer.liveCount(); n != 0 {
		t.Errorf("%d chart instances survived logout", n)
	}
	if n := td.scheduler.fireAll(); n != 0 {
		t.Errorf("%d delayed refreshes survived logout", n)
	}
	if got := fb.count("/api/history"); got != historyCalls {
		t.Errorf("history reloaded after logout")
	}

	// Logging out twice is harmless.
	td.Logout(context.Background())
	if v := td.Snapshot(); v.DashboardVisible() {
		t.Error("second logout reopened the dashboard")
	}
}

func TestOperationsRequireSession(t *testing.T) {
	fb := newFakeBackend(t)
	td := newTestDashboard(t, fb, nil, 1)

	if err := td.SwitchTab("history"); !errors.Is(err, models.ErrNotLoggedIn) {
		t.Errorf("SwitchTab() error = %v", err)
	}
	if _, err := td.Submit(context.Background(), validForm()); !errors.Is(err, models.ErrNotLoggedIn) {
		t.Errorf("Submit() error = %v", err)
	}
	if _, err := td.Retrain(context.Background(), true); !errors.Is(err, models.ErrNotLoggedIn) {
		t.Errorf("Retrain() error = %v", err)
	}
}

func TestSwitchTab(t *testing.T) {
	fb := newFakeBackend(t)
	td := newTestDashboard(t, fb, nil, 1)
	td.login(t, "admin")
	historyCalls := fb.count("/api/history")

	if err := td.SwitchTab("history"); err != nil {
		t.Fatalf("SwitchTab(history) error = %v", err)
	}
	td.Wait()
	if td.Snapshot().ActiveTab != models.TabHistory || fb.count("/api/history") != historyCalls+1 {
		t.Error("history tab did not refresh history")
	}

	if err := td.SwitchTab("settings"); !errors.Is(err, models.ErrUnknownTab) {
		t.Errorf("SwitchTab(settings) error = %v, want ErrUnknownTab", err)
	}
	if td.Snapshot().ActiveTab != models.TabHistory {
		t.Error("unknown tab changed the active tab")
	}

	if err := td.SwitchTab("analytics"); err != nil {
		t.Fatalf("SwitchTab(analytics) error = %v", err)
	}
	td.Wait()
	if fb.count("/api/data/charts") != 1 || td.renderer.liveCount() != len(models.ChartKinds) {
		t.Errorf("analytics tab drew %d charts", td.renderer.liveCount())
	}
}

func TestRetrainVisibilityAndPermission(t *testing.T) {
	fb := newFakeBackend(t)
	fb.setRole("user")
	td := newTestDashboard(t, fb, nil, 1)
	td.login(t, "patient")

	v := td.Snapshot()
	if v.Retrain.Visible {
		t.Error("retrain control visible for a patient")
	}
	if v.User.RoleText != "Patient" {
		t.Errorf("role text = %q", v.User.RoleText)
	}
	if _, err := td.Retrain(context.Background(), true); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("Retrain() error = %v, want ErrForbidden", err)
	}
	if fb.count("/api/retrain") != 0 {
		t.Error("patient retrain reached the backend")
	}
}

func TestRetrain(t *testing.T) {
	fb := newFakeBackend(t)
	td := newTestDashboard(t, fb, nil, 1)
	td.login(t, "admin")
	statsCalls := fb.count("/api/data/stats")

	result, err := td.Retrain(context.Background(), false)
	if err != nil || result != nil || fb.count("/api/retrain") != 0 {
		t.Fatalf("unconfirmed Retrain() = %+v, %v", result, err)
	}

	result, err = td.Retrain(context.Background(), true)
	if err != nil || result == nil {
		t.Fatalf("Retrain() = %+v, %v", result, err)
	}

	v := td.Snapshot()
	if len(v.Alerts) != 1 || !strings.Contains(v.Alerts[0].Message, "Total Records Used: 1,400") {
		t.Errorf("alerts = %+v", v.Alerts)
	}
	if fb.count("/api/data/stats") != statsCalls+1 {
		t.Error("stats not refreshed after retraining")
	}
	if v.Retrain.Button != idleRetrainButton() {
		t.Errorf("retrain button = %+v", v.Retrain.Button)
	}

	fb.set("/api/retrain", http.StatusBadRequest, `{"error": "Not enough data"}`)
	if _, err := td.Retrain(context.Background(), true); err == nil {
		t.Fatal("expected retrain failure")
	}
	v = td.Snapshot()
	if len(v.Alerts) != 2 || v.Alerts[1].Message != "Retraining failed: Not enough data" {
		t.Errorf("alerts = %+v", v.Alerts)
	}
	if !td.AckAlert(v.Alerts[0].ID) || len(td.Snapshot().Alerts) != 1 {
		t.Error("AckAlert() did not remove the alert")
	}
}

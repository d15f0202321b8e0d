package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"InsureCost/cache"
	"InsureCost/models"
	"InsureCost/repositories"
	"InsureCost/utils"
)

const (
	statsBody = `{"total_records": 1338, "avg_claim": 13270.42, "max_claim": 63770.43, "min_claim": 1121.87,
		"features": 7, "db_connected": true, "last_model_train": "2024-01-15T10:30:00"}`
	dbStatusBody = `{"connected": true, "df_loaded": true, "df_rows": 1338, "model_ready": true}`
	chartsBody   = `{
		"total_records": 4,
		"age_distribution": {"labels": ["18-30", "31-45", "46-60"], "data": [1, 2, 1]},
		"smoker_impact": {"mean": {"No": 8434.27, "Yes": 32050.6}},
		"gender_analysis": {"male": 3, "female": 1},
		"diabetic_analysis": {"No": 2, "Yes": 2},
		"regional_analysis": {"southeast": 2, "northwest": 2},
		"bmi_claim": [[27.3, 12345.67], [31.2, 40000], [22.1, 3000]]
	}`
	historyBody = `{"predictions": [
		{"timestamp": "2024-01-15T10:30:00", "predicted_cost": 9000.5, "age": 30, "gender": "female",
		 "bmi": 22.14, "bloodpressure": 110, "diabetic": "No", "smoker": "No", "region": "northwest", "children": 1}
	], "db_connected": true, "source": "database", "message": "Loaded 1 predictions"}`
	predictBody = `{"success": true, "predicted_cost": 12345.67, "db_saved": true, "input_summary": {
		"age": 45, "gender": "male", "bmi": 27.3, "bloodpressure": 120, "diabetic": "No",
		"children": 2, "smoker": "No", "region": "southeast"}}`
	retrainBody = `{"success": true, "message": "Model retrained", "total_records": 1400, "last_train_time": "2024-01-15T10:30:00"}`
)

type fakeResponse struct {
	status int
	body   string
}

// fakeBackend imitates the analytics/prediction API.
type fakeBackend struct {
	srv *httptest.Server

	mu        sync.Mutex
	role      string
	responses map[string]fakeResponse
	calls     map[string]int
	// hooks run before the canned response; returning false skips it.
	hooks map[string]func(call int, w http.ResponseWriter, r *http.Request) bool
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{
		role: "admin",
		responses: map[string]fakeResponse{
			"/api/logout":      {http.StatusOK, `{"success": true}`},
			"/api/data/stats":  {http.StatusOK, statsBody},
			"/api/data/charts": {http.StatusOK, chartsBody},
			"/api/db/status":   {http.StatusOK, dbStatusBody},
			"/api/history":     {http.StatusOK, historyBody},
			"/api/predict":     {http.StatusOK, predictBody},
			"/api/retrain":     {http.StatusOK, retrainBody},
		},
		calls: make(map[string]int),
		hooks: make(map[string]func(int, http.ResponseWriter, *http.Request) bool),
	}
	fb.srv = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.srv.Close)
	return fb
}

func (fb *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	fb.calls[r.URL.Path]++
	call := fb.calls[r.URL.Path]
	hook := fb.hooks[r.URL.Path]
	resp, ok := fb.responses[r.URL.Path]
	role := fb.role
	fb.mu.Unlock()

	if hook != nil && !hook(call, w, r) {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Path == "/api/login" {
		var creds models.LoginRequest
		json.NewDecoder(r.Body).Decode(&creds)
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "backend-session", Path: "/"})
		fmt.Fprintf(w, `{"success": true, "username": %q, "role": %q, "login_time": "2024-01-15 10:30:00"}`,
			creds.Username, role)
		return
	}
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(resp.status)
	w.Write([]byte(resp.body))
}

func (fb *fakeBackend) set(path string, status int, body string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.responses[path] = fakeResponse{status, body}
}

func (fb *fakeBackend) hook(path string, fn func(call int, w http.ResponseWriter, r *http.Request) bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.hooks[path] = fn
}

func (fb *fakeBackend) setRole(role string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.role = role
}

func (fb *fakeBackend) count(path string) int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.calls[path]
}

// fakeRenderer records chart lifecycles instead of drawing.
type fakeRenderer struct {
	mu           sync.Mutex
	next         int
	live         map[string]models.ChartInstance
	liveByKind   map[models.ChartKind]int
	rendered     []models.ChartSpec
	destroyed    int
	placeholders map[models.ChartKind]string
	failKinds    map[models.ChartKind]bool
	// overlaps counts renders that found another live instance of the kind.
	overlaps int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		live:         make(map[string]models.ChartInstance),
		liveByKind:   make(map[models.ChartKind]int),
		placeholders: make(map[models.ChartKind]string),
		failKinds:    make(map[models.ChartKind]bool),
	}
}

func (r *fakeRenderer) Render(spec models.ChartSpec) (models.ChartInstance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failKinds[spec.Kind] {
		return models.ChartInstance{}, fmt.Errorf("canvas for %s is gone", spec.Kind)
	}
	if r.liveByKind[spec.Kind] > 0 {
		r.overlaps++
	}
	r.next++
	instance := models.ChartInstance{ID: fmt.Sprintf("chart-%d", r.next), Kind: spec.Kind, Type: spec.Type}
	r.live[instance.ID] = instance
	r.liveByKind[spec.Kind]++
	r.rendered = append(r.rendered, spec)
	delete(r.placeholders, spec.Kind)
	return instance, nil
}

func (r *fakeRenderer) Destroy(instance models.ChartInstance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[instance.ID]; !ok {
		return fmt.Errorf("unknown instance %s", instance.ID)
	}
	delete(r.live, instance.ID)
	r.liveByKind[instance.Kind]--
	r.destroyed++
	return nil
}

func (r *fakeRenderer) Placeholder(kind models.ChartKind, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.placeholders[kind] = message
	return nil
}

func (r *fakeRenderer) liveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *fakeRenderer) stats() (overlaps, destroyed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.overlaps, r.destroyed
}

func (r *fakeRenderer) lastSpec(kind models.ChartKind) (models.ChartSpec, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.rendered) - 1; i >= 0; i-- {
		if r.rendered[i].Kind == kind {
			return r.rendered[i], true
		}
	}
	return models.ChartSpec{}, false
}

// manualScheduler holds timers until the test fires them.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	s       *manualScheduler
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{s: s, delay: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *manualScheduler) pending() []*manualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireAll runs every pending timer and reports how many ran.
func (s *manualScheduler) fireAll() int {
	s.mu.Lock()
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

type testDashboard struct {
	*Dashboard
	backend   *fakeBackend
	renderer  *fakeRenderer
	scheduler *manualScheduler
	sessions  repositories.SessionRepository
}

const testTabID = "4a0a3a8c-5d43-4a52-9f42-9d3c1d1f6f11"

func newTestDashboard(t *testing.T, fb *fakeBackend, sessions repositories.SessionRepository, settleAttempts int) *testDashboard {
	t.Helper()
	if sessions == nil {
		sealer, err := utils.NewSessionSealer("a-test-secret-of-enough-length", time.Hour)
		if err != nil {
			t.Fatalf("NewSessionSealer() error = %v", err)
		}
		sessions = repositories.NewSessionRepository(cache.NewMemoryCache(), sealer)
	}

	client, err := repositories.NewAPIClient(fb.srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewAPIClient() error = %v", err)
	}

	renderer := newFakeRenderer()
	scheduler := &manualScheduler{}
	d := NewDashboard(DashboardOptions{
		TabID:          testTabID,
		Backend:        repositories.NewBackend(client),
		Sessions:       sessions,
		Renderer:       renderer,
		Scheduler:      scheduler,
		SettleDelay:    DefaultSettleDelay,
		SettleAttempts: settleAttempts,
	})
	t.Cleanup(d.Teardown)

	return &testDashboard{Dashboard: d, backend: fb, renderer: renderer, scheduler: scheduler, sessions: sessions}
}

// login logs in and waits for the initial loads.
func (td *testDashboard) login(t *testing.T, username string) {
	t.Helper()
	if _, err := td.Login(context.Background(), username, "password"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	td.Wait()
}

func validForm() models.PredictionForm {
	return models.PredictionForm{
		Age:           "45",
		Gender:        "male",
		BMI:           "27.3",
		BloodPressure: "120",
		Diabetic:      "No",
		Children:      "2",
		Smoker:        "No",
		Region:        "southeast",
	}
}

package services

import (
	"context"
	"log"
	"sync"
	"time"

	"InsureCost/models"
	"InsureCost/repositories"
)

// DashboardOptions carries the collaborators of one dashboard tab.
type DashboardOptions struct {
	TabID          string
	Backend        *repositories.Backend
	Sessions       repositories.SessionRepository
	Renderer       ChartRenderer
	Scheduler      Scheduler
	Currency       string
	SettleDelay    time.Duration
	SettleAttempts int
}

// Dashboard is the application state of one browser tab: logged out,
// logging in, or logged in with its active tab, prediction, history and
// charts. Logout is the only way out of the logged-in stage.
type Dashboard struct {
	tabID   string
	backend *repositories.Backend

	view        *ViewStore
	renderer    ChartRenderer
	charts      *ChartManager
	tasks       *taskGroup
	sessions    *SessionManager
	sync        *DataSyncService
	router      *ViewRouter
	predictions *PredictionService
	retrain     *RetrainService

	// lifecycle serialises Init, Login, Logout and Teardown.
	lifecycle sync.Mutex
}

func NewDashboard(opts DashboardOptions) *Dashboard {
	view := NewViewStore()
	charts := NewChartManager(opts.Renderer, view)
	tasks := newTaskGroup(opts.Scheduler)
	backend := opts.Backend

	dataSync := NewDataSyncService(backend.Data, backend.History, view, charts, opts.Currency)
	sessions := NewSessionManager(backend.Auth, backend.Client, opts.Sessions, opts.TabID, view)

	return &Dashboard{
		tabID:       opts.TabID,
		backend:     backend,
		view:        view,
		renderer:    opts.Renderer,
		charts:      charts,
		tasks:       tasks,
		sessions:    sessions,
		sync:        dataSync,
		router:      NewViewRouter(view, dataSync, tasks),
		predictions: NewPredictionService(backend.Prediction, dataSync, view, tasks, opts.Currency, opts.SettleDelay, opts.SettleAttempts),
		retrain:     NewRetrainService(backend.Prediction, dataSync, sessions, view),
	}
}

func (d *Dashboard) TabID() string {
	return d.tabID
}

// Init restores a stored session. Without one the login page stays shown.
func (d *Dashboard) Init(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.sessions.Current() != nil {
		return nil
	}
	session, err := d.sessions.Restore(ctx)
	if err != nil {
		log.Printf("Failed to restore session for tab %s: %v", d.tabID, err)
		return err
	}
	if session != nil {
		d.enter(*session)
	}
	return nil
}

// Login authenticates and opens the dashboard. Logging in over an open
// session logs that one out first.
func (d *Dashboard) Login(ctx context.Context, username, password string) (*models.Session, error) {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	if d.sessions.Current() != nil {
		d.logoutLocked(ctx)
	}

	session, err := d.sessions.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	d.enter(*session)
	return session, nil
}

// enter shows the dashboard for session, loads stats and history and opens
// the predict tab.
func (d *Dashboard) enter(session models.Session) {
	d.sync.Activate()
	d.view.Update(func(v *models.ViewState) bool {
		v.Stage = models.StageLoggedIn
		v.Login.Error = ""
		v.User = userBadge(session)
		v.Retrain.Visible = session.IsAdmin()
		return true
	})

	d.tasks.Go(func(ctx context.Context) {
		_ = d.sync.LoadStats(ctx)
	})
	d.tasks.Go(func(ctx context.Context) {
		_ = d.sync.LoadDBStatus(ctx)
	})
	d.tasks.Go(func(ctx context.Context) {
		_, _ = d.sync.LoadHistory(ctx)
	})
	if err := d.router.SwitchTab(string(models.TabPredict)); err != nil {
		log.Printf("Failed to open predict tab: %v", err)
	}
}

// Logout closes the session whatever the backend answers. Any pending
// delayed refresh is cancelled and late responses are discarded.
func (d *Dashboard) Logout(ctx context.Context) error {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()
	return d.logoutLocked(ctx)
}

func (d *Dashboard) logoutLocked(ctx context.Context) error {
	d.sync.Invalidate()
	d.predictions.Invalidate()
	d.retrain.Invalidate()
	d.tasks.CancelPending()

	err := d.sessions.Logout(ctx)

	d.charts.Reset()
	d.view.Update(func(v *models.ViewState) bool {
		resetView(v)
		return true
	})
	return err
}

// Teardown stops all background work and ends the view subscriptions. The
// dashboard is unusable afterwards.
func (d *Dashboard) Teardown() {
	d.lifecycle.Lock()
	defer d.lifecycle.Unlock()

	d.sync.Invalidate()
	d.predictions.Invalidate()
	d.retrain.Invalidate()
	d.tasks.Stop()
	d.charts.Reset()
	d.view.Close()
}

func (d *Dashboard) SwitchTab(name string) error {
	if d.sessions.Current() == nil {
		return models.ErrNotLoggedIn
	}
	return d.router.SwitchTab(name)
}

func (d *Dashboard) Submit(ctx context.Context, form models.PredictionForm) (*models.PredictionResult, error) {
	if d.sessions.Current() == nil {
		return nil, models.ErrNotLoggedIn
	}
	return d.predictions.Submit(ctx, form)
}

func (d *Dashboard) Retrain(ctx context.Context, confirmed bool) (*models.RetrainResult, error) {
	return d.retrain.Retrain(ctx, confirmed)
}

// Refresh reloads the data of the open session.
func (d *Dashboard) Refresh(ctx context.Context) error {
	if d.sessions.Current() == nil {
		return models.ErrNotLoggedIn
	}
	_ = d.sync.LoadStats(ctx)
	_ = d.sync.LoadDBStatus(ctx)
	_, err := d.sync.LoadHistory(ctx)
	return err
}

func (d *Dashboard) AckAlert(id string) bool {
	return d.view.AckAlert(id)
}

func (d *Dashboard) Session() *models.Session {
	return d.sessions.Current()
}

func (d *Dashboard) Snapshot() models.ViewState {
	return d.view.Snapshot()
}

func (d *Dashboard) Subscribe() (<-chan models.ViewState, func()) {
	return d.view.Subscribe()
}

// Charts returns the live chart instances by kind.
func (d *Dashboard) Charts() map[models.ChartKind]models.ChartInstance {
	return d.charts.Instances()
}

// Renderer returns the chart renderer of this tab.
func (d *Dashboard) Renderer() ChartRenderer {
	return d.renderer
}

// Wait blocks until the background loads started so far have finished,
// including delayed refreshes still waiting for their timer.
func (d *Dashboard) Wait() {
	d.tasks.Wait()
}

package services

import (
	"context"

	"InsureCost/models"
)

// ViewRouter switches between the dashboard tabs and starts the load each
// tab needs. Loads run in the background and are never cancelled by a later
// switch; the data streams drop responses that arrive out of order.
type ViewRouter struct {
	view  *ViewStore
	sync  *DataSyncService
	tasks *taskGroup
}

func NewViewRouter(view *ViewStore, sync *DataSyncService, tasks *taskGroup) *ViewRouter {
	return &ViewRouter{view: view, sync: sync, tasks: tasks}
}

// SwitchTab makes name the only active tab. Unknown names leave the active
// tab unchanged.
func (r *ViewRouter) SwitchTab(name string) error {
	tab, ok := models.ParseTab(name)
	if !ok {
		return models.ErrUnknownTab
	}

	r.view.Update(func(v *models.ViewState) bool {
		v.ActiveTab = tab
		return true
	})

	switch tab {
	case models.TabAnalytics:
		r.tasks.Go(func(ctx context.Context) {
			_ = r.sync.LoadChartsData(ctx)
		})
	case models.TabHistory:
		r.tasks.Go(func(ctx context.Context) {
			_, _ = r.sync.LoadHistory(ctx)
		})
	}
	return nil
}

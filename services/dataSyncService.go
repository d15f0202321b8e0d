package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"InsureCost/models"
	"InsureCost/repositories"
	"InsureCost/utils"
)

const emptyHistoryMessage = "No predictions yet"

// DataSyncService reads stats, chart aggregates and history from the backend
// into the view. Every load fails soft: errors are logged and the section is
// left in its placeholder or empty state. Each stream has its own request
// epoch so only the newest response of a stream is applied.
type DataSyncService struct {
	data     repositories.DataRepository
	history  repositories.HistoryRepository
	view     *ViewStore
	charts   *ChartManager
	currency string

	statsEpoch    requestEpoch
	dbStatusEpoch requestEpoch
	chartsEpoch   requestEpoch
	historyEpoch  requestEpoch

	// live is false while no session is open; nothing is applied then.
	live atomic.Bool
}

func NewDataSyncService(
	data repositories.DataRepository,
	history repositories.HistoryRepository,
	view *ViewStore,
	charts *ChartManager,
	currency string,
) *DataSyncService {
	if currency == "" {
		currency = utils.DefaultCurrencySymbol
	}
	return &DataSyncService{data: data, history: history, view: view, charts: charts, currency: currency}
}

// Activate lets responses reach the view again after a login.
func (s *DataSyncService) Activate() {
	s.live.Store(true)
}

// Invalidate makes every in-flight response stale. Used on logout.
func (s *DataSyncService) Invalidate() {
	s.live.Store(false)
	s.statsEpoch.invalidate()
	s.dbStatusEpoch.invalidate()
	s.chartsEpoch.invalidate()
	s.historyEpoch.invalidate()
}

// LoadStats refreshes the summary counters.
func (s *DataSyncService) LoadStats(ctx context.Context) error {
	epoch := s.statsEpoch.next()

	stats, err := s.data.GetStats(ctx)
	if err != nil {
		log.Printf("Error loading stats: %v", err)
		return err
	}

	applied := s.view.Update(func(v *models.ViewState) bool {
		if !s.current(&s.statsEpoch, epoch) {
			return false
		}
		dbStatus := v.Stats.DBStatus
		v.Stats = models.StatsView{
			TotalRecords: utils.FormatCount(stats.TotalRecords),
			AvgClaim:     utils.FormatCurrency(s.currency, stats.AvgClaim),
			MaxClaim:     utils.FormatCurrency(s.currency, stats.MaxClaim),
			MinClaim:     utils.FormatCurrency(s.currency, stats.MinClaim),
			DBConnected:  stats.DBConnected,
			DBStatus:     dbStatus,
		}
		if stats.LastModelTrain != nil {
			v.Stats.LastModelTrain = utils.FormatTimestamp(*stats.LastModelTrain)
		}
		return true
	})
	if !applied {
		return models.ErrStaleResponse
	}
	return nil
}

// LoadDBStatus refreshes the backend storage status line of the stats panel.
func (s *DataSyncService) LoadDBStatus(ctx context.Context) error {
	epoch := s.dbStatusEpoch.next()

	status, err := s.data.GetDBStatus(ctx)
	if err != nil {
		log.Printf("Error loading database status: %v", err)
		return err
	}

	applied := s.view.Update(func(v *models.ViewState) bool {
		if !s.current(&s.dbStatusEpoch, epoch) {
			return false
		}
		v.Stats.DBStatus = describeDBStatus(status)
		return true
	})
	if !applied {
		return models.ErrStaleResponse
	}
	return nil
}

// LoadChartsData fetches the six chart aggregates and redraws the charts.
// A response reporting zero records puts the "no data" placeholder on every
// canvas instead.
func (s *DataSyncService) LoadChartsData(ctx context.Context) error {
	epoch := s.chartsEpoch.next()
	guard := func() bool { return s.current(&s.chartsEpoch, epoch) }

	charts, err := s.data.GetCharts(ctx)
	if err != nil {
		log.Printf("Error loading charts: %v", err)
		return err
	}

	if charts.TotalRecords == 0 {
		if charts.Error != "" {
			log.Printf("No chart data available: %s", charts.Error)
		}
		return s.charts.ShowNoData(guard)
	}
	return s.charts.Redraw(charts, guard)
}

// LoadHistory replaces the history list with the backend's. An empty list,
// an error answer or a transport failure all render the explicit empty
// state; a stale list is never kept. The records are returned for callers
// that wait for a specific record to appear.
func (s *DataSyncService) LoadHistory(ctx context.Context) ([]models.HistoryRecord, error) {
	epoch := s.historyEpoch.next()

	resp, err := s.history.GetHistory(ctx)
	if err != nil {
		log.Printf("Error loading history: %v", err)
		s.view.Update(func(v *models.ViewState) bool {
			if !s.current(&s.historyEpoch, epoch) {
				return false
			}
			v.History = models.HistoryView{Empty: true, EmptyMessage: emptyHistoryMessage}
			return true
		})
		return nil, err
	}

	items := make([]models.HistoryItem, 0, len(resp.Predictions))
	for _, record := range resp.Predictions {
		items = append(items, s.historyItem(record))
	}

	applied := s.view.Update(func(v *models.ViewState) bool {
		if !s.current(&s.historyEpoch, epoch) {
			return false
		}
		v.History = models.HistoryView{
			Items:  items,
			Status: historyStatus(resp),
		}
		if len(items) == 0 {
			v.History.Empty = true
			v.History.EmptyMessage = emptyHistoryMessage
		}
		return true
	})
	if !applied {
		return resp.Predictions, models.ErrStaleResponse
	}
	return resp.Predictions, nil
}

func (s *DataSyncService) current(stream *requestEpoch, epoch uint64) bool {
	return s.live.Load() && stream.isCurrent(epoch)
}

func (s *DataSyncService) historyItem(record models.HistoryRecord) models.HistoryItem {
	return models.HistoryItem{
		Timestamp: utils.FormatTimestamp(record.Timestamp),
		Cost:      utils.FormatCurrency(s.currency, record.PredictedCost),
		Fields: []models.SummaryItem{
			{Label: "Age", Value: utils.FormatNumber(record.Age) + " years"},
			{Label: "Gender", Value: orNA(record.Gender)},
			{Label: "BMI", Value: formatOptional(record.BMI, "%.1f")},
			{Label: "Blood Pressure", Value: formatOptional(record.BloodPressure, "%g mmHg")},
			{Label: "Diabetic", Value: orNA(record.Diabetic)},
			{Label: "Smoker", Value: orNA(record.Smoker)},
			{Label: "Region", Value: orNA(record.Region)},
			{Label: "Children", Value: fmt.Sprintf("%d", record.Children)},
		},
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return utils.Capitalize(s)
}

func formatOptional(v float64, format string) string {
	if v == 0 {
		return "N/A"
	}
	return fmt.Sprintf(format, v)
}

func historyStatus(resp *models.HistoryResponse) string {
	switch {
	case !resp.DBConnected && resp.Message != "":
		return "Database disconnected: " + resp.Message
	case !resp.DBConnected:
		return "Database disconnected"
	default:
		return resp.Message
	}
}

func describeDBStatus(status *models.DBStatus) string {
	if !status.Connected {
		if status.DBError != "" {
			return "Database disconnected: " + status.DBError
		}
		return "Database disconnected"
	}
	model := "not ready"
	if status.ModelReady {
		model = "ready"
	}
	return fmt.Sprintf("Database connected, %s rows, model %s", utils.FormatCount(status.DataRows), model)
}

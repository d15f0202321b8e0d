package services

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"InsureCost/models"
	"InsureCost/repositories"
	"InsureCost/utils"

	"github.com/pkg/errors"
)

const connectionErrorMessage = "Connection error. Please try again."

// DefaultSettleDelay is how long the history refresh waits after a
// prediction so the backend has committed the new record.
const DefaultSettleDelay = time.Second

func idlePredictButton() models.ControlState {
	return models.ControlState{Label: "Get AI Prediction"}
}

func busyPredictButton() models.ControlState {
	return models.ControlState{Disabled: true, Label: "Processing...", Spinner: true}
}

// PredictionService runs the predict form submission.
type PredictionService struct {
	repo     repositories.PredictionRepository
	sync     *DataSyncService
	view     *ViewStore
	tasks    *taskGroup
	currency string

	settleDelay    time.Duration
	settleAttempts int

	busy  atomic.Bool
	epoch requestEpoch
}

func NewPredictionService(
	repo repositories.PredictionRepository,
	sync *DataSyncService,
	view *ViewStore,
	tasks *taskGroup,
	currency string,
	settleDelay time.Duration,
	settleAttempts int,
) *PredictionService {
	if currency == "" {
		currency = utils.DefaultCurrencySymbol
	}
	if settleDelay < 0 {
		settleDelay = DefaultSettleDelay
	}
	if settleAttempts < 1 {
		settleAttempts = 1
	}
	return &PredictionService{
		repo:           repo,
		sync:           sync,
		view:           view,
		tasks:          tasks,
		currency:       currency,
		settleDelay:    settleDelay,
		settleAttempts: settleAttempts,
	}
}

// Invalidate drops the outcome of an in-flight submission.
func (s *PredictionService) Invalidate() {
	s.epoch.invalidate()
}

// Submit sends the form to the backend. Exactly one of two things becomes
// visible: the result card, or one alert. The form is kept either way and the
// submit control is always restored.
func (s *PredictionService) Submit(ctx context.Context, form models.PredictionForm) (*models.PredictionResult, error) {
	s.view.Update(func(v *models.ViewState) bool {
		v.Prediction.Form = form
		return true
	})

	req, err := utils.CoercePredictionForm(form)
	if err != nil {
		s.view.Update(func(v *models.ViewState) bool {
			pushAlert(v, "Error: "+err.Error())
			return true
		})
		return nil, err
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, models.ErrBusy
	}
	defer s.busy.Store(false)

	epoch := s.epoch.next()
	s.view.Update(func(v *models.ViewState) bool {
		if !s.epoch.isCurrent(epoch) {
			return false
		}
		v.Prediction.Button = busyPredictButton()
		return true
	})
	defer s.view.Update(func(v *models.ViewState) bool {
		v.Prediction.Button = idlePredictButton()
		return true
	})

	result, err := s.repo.Predict(ctx, req)
	if err != nil {
		log.Printf("Prediction error: %v", err)
		s.alert(epoch, predictionErrorMessage(err))
		return nil, err
	}

	card := s.resultCard(result)
	applied := s.view.Update(func(v *models.ViewState) bool {
		if !s.epoch.isCurrent(epoch) {
			return false
		}
		v.Prediction.Result = card
		return true
	})
	if !applied {
		return result, models.ErrStaleResponse
	}

	s.scheduleHistoryRefresh(result.PredictedCost, 1)
	return result, nil
}

// scheduleHistoryRefresh reloads history after the settle delay. With more
// than one attempt it keeps polling until the newest record carries the
// predicted cost or the attempts run out.
func (s *PredictionService) scheduleHistoryRefresh(cost float64, attempt int) {
	s.tasks.After(s.settleDelay, func(ctx context.Context) {
		records, err := s.sync.LoadHistory(ctx)
		if err != nil || attempt >= s.settleAttempts {
			return
		}
		if len(records) > 0 && math.Abs(records[0].PredictedCost-cost) < 0.005 {
			return
		}
		s.scheduleHistoryRefresh(cost, attempt+1)
	})
}

func (s *PredictionService) resultCard(result *models.PredictionResult) *models.ResultCard {
	summary := result.InputSummary
	return &models.ResultCard{
		Cost:    utils.FormatCurrency(s.currency, result.PredictedCost),
		DBSaved: result.DBSaved,
		Summary: []models.SummaryItem{
			{Label: "Age", Value: utils.FormatNumber(summary.Age) + " years"},
			{Label: "Gender", Value: summary.Gender},
			{Label: "BMI", Value: utils.FormatNumber(summary.BMI)},
			{Label: "Blood Pressure", Value: utils.FormatNumber(summary.BloodPressure) + " mmHg"},
			{Label: "Diabetic", Value: summary.Diabetic},
			{Label: "Smoker", Value: summary.Smoker},
			{Label: "Children", Value: fmt.Sprintf("%d", summary.Children)},
			{Label: "Region", Value: summary.Region},
		},
	}
}

func (s *PredictionService) alert(epoch uint64, message string) {
	s.view.Update(func(v *models.ViewState) bool {
		if !s.epoch.isCurrent(epoch) {
			return false
		}
		pushAlert(v, message)
		return true
	})
}

func predictionErrorMessage(err error) string {
	var netErr *models.NetworkError
	if errors.As(err, &netErr) && !netErr.Transport() {
		if netErr.Message != "" {
			return "Error: " + netErr.Message
		}
		return "Error: Prediction failed"
	}
	return connectionErrorMessage
}

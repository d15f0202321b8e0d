package services

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"

	"InsureCost/models"
	"InsureCost/repositories"
	"InsureCost/utils"

	"github.com/pkg/errors"
)

func idleRetrainButton() models.ControlState {
	return models.ControlState{Label: "Retrain Model"}
}

func busyRetrainButton() models.ControlState {
	return models.ControlState{Disabled: true, Label: "Retraining Model...", Spinner: true}
}

// RetrainService lets administrators retrain the backend model on the
// stored prediction history.
type RetrainService struct {
	repo     repositories.PredictionRepository
	sync     *DataSyncService
	sessions *SessionManager
	view     *ViewStore

	busy  atomic.Bool
	epoch requestEpoch
}

func NewRetrainService(
	repo repositories.PredictionRepository,
	sync *DataSyncService,
	sessions *SessionManager,
	view *ViewStore,
) *RetrainService {
	return &RetrainService{repo: repo, sync: sync, sessions: sessions, view: view}
}

func (s *RetrainService) Invalidate() {
	s.epoch.invalidate()
}

// Retrain runs only for administrators and only once the user confirmed.
// An unconfirmed call does nothing and returns no result.
func (s *RetrainService) Retrain(ctx context.Context, confirmed bool) (*models.RetrainResult, error) {
	session := s.sessions.Current()
	if session == nil {
		return nil, models.ErrNotLoggedIn
	}
	if !session.IsAdmin() {
		return nil, models.ErrForbidden
	}
	if !confirmed {
		return nil, nil
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
		v.Retrain.Button = busyRetrainButton()
		return true
	})
	defer s.view.Update(func(v *models.ViewState) bool {
		v.Retrain.Button = idleRetrainButton()
		return true
	})

	result, err := s.repo.Retrain(ctx)
	if err != nil {
		log.Printf("Retrain error: %v", err)
		s.alert(epoch, retrainErrorMessage(err))
		return nil, err
	}

	s.alert(epoch, fmt.Sprintf("Model Retrained Successfully!\n\nTotal Records Used: %s\nLast Training: %s",
		utils.FormatCount(result.TotalRecords), utils.FormatTimestamp(result.LastTrainTime)))
	if s.epoch.isCurrent(epoch) {
		_ = s.sync.LoadStats(ctx)
	}
	return result, nil
}

func (s *RetrainService) alert(epoch uint64, message string) {
	s.view.Update(func(v *models.ViewState) bool {
		if !s.epoch.isCurrent(epoch) {
			return false
		}
		pushAlert(v, message)
		return true
	})
}

func retrainErrorMessage(err error) string {
	var netErr *models.NetworkError
	if errors.As(err, &netErr) && !netErr.Transport() {
		if netErr.Message != "" {
			return "Retraining failed: " + netErr.Message
		}
		return "Retraining failed: Unknown error"
	}
	return connectionErrorMessage
}

package services

import (
	"sync"

	"InsureCost/models"

	"github.com/google/uuid"
)

// ViewStore owns the display model of one dashboard tab. Every mutation goes
// through Update; subscribers receive the latest snapshot after each change.
type ViewStore struct {
	mu          sync.Mutex
	state       models.ViewState
	subscribers map[int]chan models.ViewState
	nextID      int
	closed      bool
}

func NewViewStore() *ViewStore {
	s := &ViewStore{subscribers: make(map[int]chan models.ViewState)}
	resetView(&s.state)
	return s
}

// resetView puts the view into its logged-out shape. The version keeps
// counting so subscribers never see it go backwards.
func resetView(v *models.ViewState) {
	version := v.Version
	*v = models.ViewState{
		Version: version,
		Stage:   models.StageLoggedOut,
		Prediction: models.PredictionView{
			Button: idlePredictButton(),
		},
		Retrain: models.RetrainView{
			Button: idleRetrainButton(),
		},
		History: models.HistoryView{
			Empty:        true,
			EmptyMessage: emptyHistoryMessage,
		},
		Charts: make(map[models.ChartKind]models.CanvasView, len(models.ChartKinds)),
	}
	for _, kind := range models.ChartKinds {
		v.Charts[kind] = models.CanvasView{Kind: kind}
	}
}

// Update applies fn under the view lock. fn returns false to signal that it
// changed nothing, in which case no version is spent and nobody is notified.
func (s *ViewStore) Update(fn func(v *models.ViewState) bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !fn(&s.state) {
		return false
	}
	s.state.Version++
	snapshot := s.state.Clone()
	for _, ch := range s.subscribers {
		// Keep only the newest snapshot for slow readers.
		select {
		case <-ch:
		default:
		}
		ch <- snapshot
	}
	return true
}

// Snapshot returns a copy of the current view.
func (s *ViewStore) Snapshot() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe returns a channel that always holds at most the latest snapshot,
// and a function that ends the subscription.
func (s *ViewStore) Subscribe() (<-chan models.ViewState, func()) {
	ch := make(chan models.ViewState, 1)

	s.mu.Lock()
	ch <- s.state.Clone()
	if s.closed {
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subscribers[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Close ends every subscription: each channel is closed after its last
// snapshot. Later updates reach nobody.
func (s *ViewStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

// pushAlert queues a blocking message. The browser shows them one at a time
// and acknowledges them in order.
func pushAlert(v *models.ViewState, message string) {
	v.Alerts = append(v.Alerts, models.Alert{ID: uuid.NewString(), Message: message})
}

// AckAlert removes the alert with the given id, or the oldest one when id is
// empty. It reports whether an alert was removed.
func (s *ViewStore) AckAlert(id string) bool {
	return s.Update(func(v *models.ViewState) bool {
		for i, alert := range v.Alerts {
			if id == "" || alert.ID == id {
				v.Alerts = append(v.Alerts[:i:i], v.Alerts[i+1:]...)
				return true
			}
		}
		return false
	})
}

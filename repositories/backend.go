package repositories

// Backend groups the repositories of one dashboard tab. They share the tab's
// APIClient and therefore its backend session.
type Backend struct {
	Client     *APIClient
	Auth       AuthRepository
	Data       DataRepository
	History    HistoryRepository
	Prediction PredictionRepository
}

func NewBackend(client *APIClient) *Backend {
	return &Backend{
		Client:     client,
		Auth:       NewAuthRepository(client),
		Data:       NewDataRepository(client),
		History:    NewHistoryRepository(client),
		Prediction: NewPredictionRepository(client),
	}
}

package repositories

import (
	"context"
	"net/http"

	"InsureCost/models"
)

type HistoryRepository interface {
	GetHistory(ctx context.Context) (*models.HistoryResponse, error)
}

type historyRepository struct {
	client *APIClient
}

func NewHistoryRepository(client *APIClient) HistoryRepository {
	return &historyRepository{client: client}
}

func (r *historyRepository) GetHistory(ctx context.Context) (*models.HistoryResponse, error) {
	var history models.HistoryResponse
	if err := r.client.do(ctx, http.MethodGet, "/api/history", nil, &history); err != nil {
		return nil, err
	}
	return &history, nil
}

package repositories

import (
	"context"
	"net/http"

	"InsureCost/models"
)

type DataRepository interface {
	GetStats(ctx context.Context) (*models.Stats, error)
	GetCharts(ctx context.Context) (*models.ChartsResponse, error)
	GetDBStatus(ctx context.Context) (*models.DBStatus, error)
}

type dataRepository struct {
	client *APIClient
}

func NewDataRepository(client *APIClient) DataRepository {
	return &dataRepository{client: client}
}

func (r *dataRepository) GetStats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	if err := r.client.do(ctx, http.MethodGet, "/api/data/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *dataRepository) GetCharts(ctx context.Context) (*models.ChartsResponse, error) {
	var charts models.ChartsResponse
	if err := r.client.do(ctx, http.MethodGet, "/api/data/charts", nil, &charts); err != nil {
		return nil, err
	}
	return &charts, nil
}

func (r *dataRepository) GetDBStatus(ctx context.Context) (*models.DBStatus, error) {
	var status models.DBStatus
	if err := r.client.do(ctx, http.MethodGet, "/api/db/status", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

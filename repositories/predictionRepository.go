package repositories

import (
	"context"
	"net/http"

	"InsureCost/models"
)

type PredictionRepository interface {
	Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error)
	Retrain(ctx context.Context) (*models.RetrainResult, error)
}

type predictionRepository struct {
	client *APIClient
}

func NewPredictionRepository(client *APIClient) PredictionRepository {
	return &predictionRepository{client: client}
}

func (r *predictionRepository) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	var result models.PredictionResult
	if err := r.client.do(ctx, http.MethodPost, "/api/predict", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *predictionRepository) Retrain(ctx context.Context) (*models.RetrainResult, error) {
	var result models.RetrainResult
	if err := r.client.do(ctx, http.MethodPost, "/api/retrain", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package repositories

import (
	"context"
	"net/http"

	"InsureCost/models"

	"github.com/pkg/errors"
)

type AuthRepository interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
}

type authRepository struct {
	client *APIClient
}

func NewAuthRepository(client *APIClient) AuthRepository {
	return &authRepository{client: client}
}

// Login returns *models.AuthError when the backend rejects the credentials.
func (r *authRepository) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	err := r.client.do(ctx, http.MethodPost, "/api/login", models.LoginRequest{Username: username, Password: password}, &resp)
	if err != nil {
		var netErr *models.NetworkError
		if errors.As(err, &netErr) && (netErr.Status == http.StatusUnauthorized || netErr.Status == http.StatusBadRequest) {
			message := netErr.Message
			if message == "" {
				message = "Invalid credentials"
			}
			return nil, &models.AuthError{Message: message}
		}
		return nil, err
	}
	return &resp, nil
}

func (r *authRepository) Logout(ctx context.Context) error {
	return r.client.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

package identity

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// IdentityError é o tipo dos erros de identificação do usuário
type IdentityError struct {
	Message string
}

func (e *IdentityError) Error() string {
	return e.Message
}

var ErrUnauthorizedIdentity = &IdentityError{Message: "unauthorized identity"}

// Resolver resolve o token do chamador para o ID do usuário
type Resolver interface {
	ResolveUser(ctx context.Context, token string) (string, error)
}

// HTTPResolver consulta o serviço de autenticação via HTTP
type HTTPResolver struct {
	client *resty.Client
	logger *zap.Logger
}

// NewHTTPResolver cria uma nova instância de HTTPResolver
func NewHTTPResolver(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPResolver {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	return &HTTPResolver{
		client: client,
		logger: logger,
	}
}

type currentUser struct {
	ID string `json:"id"`
}

// ResolveUser calls GET /api/users/me with the caller's bearer token.
func (r *HTTPResolver) ResolveUser(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrUnauthorizedIdentity
	}

	var user currentUser
	resp, err := r.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/api/users/me")
	if err != nil {
		r.logger.Error("❌ Identity service unreachable", zap.Error(err))
		return "", fmt.Errorf("identity request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return "", ErrUnauthorizedIdentity
	}
	if resp.IsError() {
		return "", fmt.Errorf("identity service returned status %d", resp.StatusCode())
	}
	if user.ID == "" {
		return "", fmt.Errorf("%w: empty user id", ErrUnauthorizedIdentity)
	}

	return user.ID, nil
}

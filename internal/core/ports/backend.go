package ports

import (
	"context"

	"github.com/talentbridge/gateway/internal/core/domain"
)

// Credentials is the login request payload.
type Credentials struct {
	Email    string
	Password string
}

// Registration is the account creation payload.
type Registration struct {
	Name     string
	Email    string
	Password string
	UserType domain.Role
}

// AuthResult is the backend's response to a successful login or register.
type AuthResult struct {
	User  *domain.User
	Token string
}

// BackendClient wraps the marketplace backend REST API. The backend owns
// all business logic, persistence and matching; the gateway only relays.
type BackendClient interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domain.User, error)
	Dashboard(ctx context.Context, token string, role domain.Role) (domain.DashboardPayload, error)
	ResendVerification(ctx context.Context, token string) error
}

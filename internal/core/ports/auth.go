package ports

import (
	"context"

	"github.com/assessly/assessment-api/internal/core/domain"
)

// RegisterInput carries everything needed to open a new account: the first
// user becomes the owner of a freshly created organization.
type RegisterInput struct {
	OrganizationName string
	Name             string
	Email            string
	Password         string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, *domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	CurrentUser(ctx context.Context, userID string) (*domain.User, error)
}

// UserRepository defines user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// OrganizationRepository defines organization persistence.
type OrganizationRepository interface {
	Create(ctx context.Context, org *domain.Organization) (*domain.Organization, error)
	FindByID(ctx context.Context, id string) (*domain.Organization, error)
	SetOwner(ctx context.Context, id, userID string) error
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
	Delete(ctx context.Context, id string) error
}

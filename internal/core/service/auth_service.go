package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/assessly/assessment-api/internal/core/domain"
	"github.com/assessly/assessment-api/internal/core/ports"
	"github.com/assessly/assessment-api/internal/pkg/password"
	"github.com/assessly/assessment-api/internal/pkg/token"
)

// AuthService implements registration, login, and token refresh.
type AuthService struct {
	users  ports.UserRepository
	orgs   ports.OrganizationRepository
	tokens *token.Manager
	email  ports.EmailSender
	log    zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	orgs ports.OrganizationRepository,
	tokens *token.Manager,
	email ports.EmailSender,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{users: users, orgs: orgs, tokens: tokens, email: email, log: log}
}

// Register creates an organization and its owner user in one step.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Email == "" || in.OrganizationName == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	org, err := s.orgs.Create(ctx, &domain.Organization{
		Name:      in.OrganizationName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &domain.User{
		Email:          in.Email,
		Name:           in.Name,
		PasswordHash:   hash,
		Role:           domain.RoleOwner,
		OrganizationID: org.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		// A failed registration must not leave the organization behind.
		if delErr := s.orgs.Delete(ctx, org.ID); delErr != nil {
			s.log.Error().Err(delErr).Str("org_id", org.ID).Msg("failed to clean up organization after registration failure")
		}
		return nil, err
	}

	if err := s.orgs.SetOwner(ctx, org.ID, user.ID); err != nil {
		return nil, err
	}

	// Welcome email is best effort, never blocks registration.
	if err := s.email.SendWelcome(ctx, user.Email, user.Name); err != nil {
		s.log.Warn().Err(err).Str("email", user.Email).Msg("welcome email failed")
	}

	s.log.Info().Str("user_id", user.ID).Str("org_id", org.ID).Msg("account registered")
	return user, nil
}

// Login verifies the credentials and issues an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, email, pw string) (*domain.TokenPair, *domain.User, error) {
	if email == "" || pw == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	if !password.Verify(pw, user.PasswordHash) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair. The user is
// re-read so that deleted accounts cannot keep refreshing.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, _ := claims["sub"].(string)
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.issuePair(user)
}

// CurrentUser returns the account behind an authenticated request.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) issuePair(user *domain.User) (*domain.TokenPair, error) {
	claims := jwt.MapClaims{
		"sub":    user.ID,
		"email":  user.Email,
		"role":   user.Role,
		"org_id": user.OrganizationID,
	}

	access, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return nil, err
	}
	refresh, err := s.tokens.IssueRefresh(claims)
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	}, nil
}

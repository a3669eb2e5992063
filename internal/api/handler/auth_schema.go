package handler

import "github.com/assessly/assessment-api/internal/core/domain"

type registerRequest struct {
	OrganizationName string `json:"organization_name" validate:"required"`
	Name             string `json:"name"              validate:"required"`
	Email            string `json:"email"             validate:"required,email"`
	Password         string `json:"password"          validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type authResponse struct {
	Tokens *domain.TokenPair `json:"tokens,omitempty"`
	User   *domain.User      `json:"user,omitempty"`
}

package handler

import "github.com/talentbridge/gateway/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Name     string `json:"name"      validate:"required"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=8"`
	UserType string `json:"user_type" validate:"required,oneof=talent recruiter admin"`
}

type sessionResponse struct {
	User  *domain.User `json:"user,omitempty"`
	Token string       `json:"token,omitempty"`
}

type pageResponse struct {
	Page string `json:"page"`
}

type acceptedResponse struct {
	Message string `json:"message"`
}

type dashboardResponse struct {
	Data    domain.DashboardPayload `json:"data,omitempty"`
	Loading bool                    `json:"loading"`
	Error   string                  `json:"error,omitempty"`
}

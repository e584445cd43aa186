package service

import (
	"context"
	"fmt"

	"localmart/internal/apperr"
	"localmart/internal/auth"
	"localmart/internal/models"
	"localmart/internal/store"
	"localmart/internal/util"

	"go.uber.org/zap"
)

// AuthService handles signup and login
type AuthService struct {
	store  *store.Store
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(store *store.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: util.GetLogger(),
	}
}

// SignupRequest holds the fields of a registration. Role is fixed once
// set; there is no role-change path.
type SignupRequest struct {
	Name      string   `json:"name" binding:"required"`
	Email     string   `json:"email" binding:"required,email"`
	Password  string   `json:"password" binding:"required,min=6"`
	Phone     string   `json:"phone" binding:"required"`
	Role      string   `json:"role" binding:"required,oneof=customer shop_owner"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// LoginRequest holds login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is the token plus the authenticated user
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Signup registers a new user and returns a signed token
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Signup")
	defer span.End()

	existing, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, apperr.InvalidArgument("validation failed",
			apperr.FieldError{Field: "email", Message: "is already registered"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Phone:        req.Phone,
		Role:         req.Role,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return &AuthResponse{Token: token, User: user}, nil
}

// Login verifies credentials and returns a signed token
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	ctx, span := util.StartSpan(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		util.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, apperr.Unauthorized("invalid email or password")
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	util.LoginsTotal.WithLabelValues("success").Inc()
	return &AuthResponse{Token: token, User: user}, nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"identity-api/internal/model"
	"identity-api/internal/token"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// AuthService handles login, refresh-token rotation and user listing. It is
// stateless: everything durable lives on the user row.
type AuthService struct {
	users      UserStore
	tokens     *token.Engine
	loginTTL   time.Duration // refresh lifetime granted at login
	refreshTTL time.Duration // refresh lifetime granted at rotation
}

func NewAuthService(users UserStore, tokens *token.Engine, loginTTL time.Duration, refreshTTL time.Duration) *AuthService {
	return &AuthService{
		users:      users,
		tokens:     tokens,
		loginTTL:   loginTTL,
		refreshTTL: refreshTTL,
	}
}

// Login authenticates by email and password and hands out a fresh token
// pair. The stored refresh token is overwritten, so a second login from
// another device invalidates the first device's refresh token.
func (s *AuthService) Login(ctx context.Context, email string, password string) (model.AccessInfo, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return model.AccessInfo{}, err
	}

	if !user.EmailConfirmed {
		return model.AccessInfo{}, model.ErrEmailNotConfirmed
	}

	if !s.users.CheckPassword(user, password) {
		return model.AccessInfo{}, model.ErrPasswordMismatch
	}

	accessToken, expiresAt, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return model.AccessInfo{}, err
	}

	refreshToken := s.tokens.GenerateRefreshToken()
	if err := s.users.UpdateRefreshToken(ctx, user.ID, refreshToken, time.Now().UTC().Add(s.loginTTL)); err != nil {
		return model.AccessInfo{}, fmt.Errorf("persist refresh token: %w", err)
	}

	slog.Info("user logged in", "user_id", user.ID)

	return model.AccessInfo{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

// Refresh exchanges an expired-or-not access token plus the stored refresh
// token for a new pair. The old refresh token is rotated out and must not
// validate again.
func (s *AuthService) Refresh(ctx context.Context, accessToken string, refreshToken string) (model.AccessInfo, error) {
	claims, err := s.tokens.ParsePrincipal(accessToken, false)
	if err != nil {
		return model.AccessInfo{}, model.ErrInvalidToken
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return model.AccessInfo{}, err
	}

	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return model.AccessInfo{}, model.ErrInvalidRequest
	}

	if !user.RefreshTokenExpiresAt.After(time.Now().UTC()) {
		return model.AccessInfo{}, model.ErrInvalidRequest
	}

	newAccessToken, expiresAt, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return model.AccessInfo{}, err
	}

	newRefreshToken := s.tokens.GenerateRefreshToken()
	if err := s.users.UpdateRefreshToken(ctx, user.ID, newRefreshToken, time.Now().UTC().Add(s.refreshTTL)); err != nil {
		return model.AccessInfo{}, fmt.Errorf("%w: persist rotated refresh token: %v", model.ErrInvalidRequest, err)
	}

	return model.AccessInfo{
		AccessToken:  newAccessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

// ListUsers pages over the stable store ordering. Page parameters are
// untrusted: non-positive values are clamped, oversized pages capped.
func (s *AuthService) ListUsers(ctx context.Context, pageNumber int, pageSize int) ([]model.UserView, model.Meta, error) {
	if pageNumber < 1 {
		pageNumber = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, model.Meta{}, err
	}

	users, err := s.users.List(ctx, (pageNumber-1)*pageSize, pageSize)
	if err != nil {
		return nil, model.Meta{}, err
	}

	views := make([]model.UserView, 0, len(users))
	for _, u := range users {
		views = append(views, model.NewUserView(u))
	}

	totalPages := total / pageSize
	if total%pageSize != 0 {
		totalPages++
	}

	return views, model.Meta{
		Page:       pageNumber,
		Limit:      pageSize,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *AuthService) GetUser(ctx context.Context, id string) (model.UserView, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return model.UserView{}, err
	}

	return model.NewUserView(user), nil
}

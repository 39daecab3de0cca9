package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forms-service/internal/auth"
	"forms-service/internal/models"
	"forms-service/internal/repositories"
	"forms-service/pkg/apperror"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	users  repositories.UserRepository
	tokens *auth.TokenManager
	google auth.OAuthProvider
	github auth.OAuthProvider
}

func NewAuthService(users repositories.UserRepository, tokens *auth.TokenManager, google, github auth.OAuthProvider) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		google: google,
		github: github,
	}
}

// Signup creates a verified local account and returns a session token for it.
func (s *AuthService) Signup(ctx context.Context, req *models.SignupRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, storeError(err, nil, "find user by email")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.Persistence(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		ID:         uuid.NewString(),
		Name:       strings.TrimSpace(req.Name),
		Email:      email,
		Photo:      models.DefaultPhoto,
		Password:   string(hashedPassword),
		Provider:   models.ProviderLocal,
		Status:     models.StatusActive,
		Role:       models.RoleUser,
		IsVerified: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeError(err, nil, "create user")
	}

	slog.Info("User signed up", "userID", user.ID)
	return s.issue(user)
}

func (s *AuthService) Signin(ctx context.Context, req *models.SigninRequest) (*models.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err, nil, "find user by email")
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsBlocked() {
		return nil, ErrUserBlocked
	}
	return s.issue(user)
}

func (s *AuthService) GoogleLogin(ctx context.Context, idToken string) (*models.AuthResponse, error) {
	return s.oauthLogin(ctx, s.google, models.ProviderGoogle, idToken)
}

func (s *AuthService) GitHubLogin(ctx context.Context, code string) (*models.AuthResponse, error) {
	return s.oauthLogin(ctx, s.github, models.ProviderGitHub, code)
}

// oauthLogin finds the account by the provider's e-mail or creates it.
func (s *AuthService) oauthLogin(ctx context.Context, provider auth.OAuthProvider, name models.Provider, credential string) (*models.AuthResponse, error) {
	if provider == nil {
		return nil, apperror.Validation(fmt.Sprintf("%s login is not configured", name))
	}
	profile, err := provider.Profile(ctx, credential)
	if err != nil {
		if errors.Is(err, auth.ErrOAuthRejected) {
			slog.Warn("OAuth credential rejected", "provider", name, "error", err)
			return nil, apperror.Validation("Invalid token")
		}
		return nil, apperror.Persistence(err)
	}

	email := strings.ToLower(profile.Email)
	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, repositories.ErrNotFound):
		user = &models.User{
			ID:         uuid.NewString(),
			Name:       profile.Name,
			Email:      email,
			Photo:      profile.Photo,
			Provider:   name,
			ProviderID: profile.ProviderID,
			Status:     models.StatusActive,
			Role:       models.RoleUser,
			IsVerified: true,
		}
		if user.Photo == "" {
			user.Photo = models.DefaultPhoto
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, storeError(err, nil, "create oauth user")
		}
		slog.Info("User created from OAuth", "provider", name, "userID", user.ID)
	default:
		return nil, storeError(err, nil, "find user by email")
	}

	if user.IsBlocked() {
		return nil, ErrUserBlocked
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, apperror.Persistence(err)
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// Authenticate resolves a bearer token to an active user, as the protect middleware requires.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, claims.ID)
	if err != nil {
		return nil, storeError(err, ErrUserGone, "find user")
	}
	if user.ChangedPasswordAfter(claims.IssuedAtTime().Add(time.Second)) {
		return nil, ErrPasswordChanged
	}
	if user.IsBlocked() {
		return nil, ErrUserBlocked
	}
	return user, nil
}

// ResolveSession verifies a token and loads only the identity fields of its user.
// Unknown and blocked users are rejected.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (models.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return models.Session{}, ErrInvalidToken
	}
	user, err := s.users.FindIdentity(ctx, claims.ID)
	if err != nil {
		return models.Session{}, storeError(err, ErrUserGone, "find identity")
	}
	if user.IsBlocked() {
		return models.Session{}, ErrUserBlocked
	}
	return user.Session(), nil
}

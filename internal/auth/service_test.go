package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rvalverde/assettrack-backend/pkg/config"
	"github.com/rvalverde/assettrack-backend/pkg/db/models"
	"github.com/rvalverde/assettrack-backend/pkg/enums"
	pkgerrors "github.com/rvalverde/assettrack-backend/pkg/errors"
	"github.com/rvalverde/assettrack-backend/pkg/security"
)

type stubUserRepo struct {
	user      *models.User
	findErr   error
	loginAt   *time.Time
	updateErr error
}

func (s *stubUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUserRepo) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.loginAt = &at
	return nil
}

type stubSessionManager struct {
	token string
	err   error
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "assettrack",
		ExpirationMinutes: 30,
	}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &models.User{
		ID:           uuid.New(),
		Email:        "tech@example.com",
		PasswordHash: hash,
		FirstName:    "Dana",
		LastName:     "Reyes",
		Role:         enums.UserRoleTechnician,
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	userRepo := &stubUserRepo{user: activeUser(t, "hunter22")}
	sessions := &stubSessionManager{token: "refresh-token"}

	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginRequest{Email: "Tech@Example.com", Password: "hunter22"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" {
		t.Fatal("expected access token")
	}
	if result.RefreshToken != "refresh-token" {
		t.Fatalf("unexpected refresh token %q", result.RefreshToken)
	}
	if result.User == nil || result.User.Role != enums.UserRoleTechnician {
		t.Fatalf("unexpected user payload %+v", result.User)
	}
	if userRepo.loginAt == nil {
		t.Fatal("expected last login to be recorded")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := &stubUserRepo{user: activeUser(t, "hunter22")}
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionManager: &stubSessionManager{token: "x"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "tech@example.com", Password: "wrong"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{},
		SessionManager: &stubSessionManager{token: "x"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginInactiveUser(t *testing.T) {
	user := activeUser(t, "hunter22")
	user.IsActive = false
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: user},
		SessionManager: &stubSessionManager{token: "x"},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "tech@example.com", Password: "hunter22"})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginSessionFailure(t *testing.T) {
	svc, err := NewService(ServiceParams{
		UserRepo:       &stubUserRepo{user: activeUser(t, "hunter22")},
		SessionManager: &stubSessionManager{err: errors.New("redis down")},
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.Login(context.Background(), LoginRequest{Email: "tech@example.com", Password: "hunter22"})
	assertCode(t, err, pkgerrors.CodeInternal)
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected coded error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s", code, appErr.Code())
	}
}

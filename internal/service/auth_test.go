package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/fleetyard/fleet-ui-api/internal/adapters/memory"
	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
	"github.com/fleetyard/fleet-ui-api/internal/mocks"
	mockauth "github.com/fleetyard/fleet-ui-api/internal/mocks/auth"
	"github.com/fleetyard/fleet-ui-api/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestNewAuthService(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	sessions := memory.NewSessionStore()

	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
	})

	assert.NotNil(t, service)
	assert.Equal(t, provider, service.provider)
	assert.Equal(t, ports.SessionStore(sessions), service.sessions)
}

func TestAuthService_BeginLogin_Success(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: memory.NewSessionStore(),
	})

	result, err := service.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")

	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)
}

func TestAuthService_BeginLogin_EmptyRedirectURL(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Provider: mockauth.NewMockAuthProvider(),
		Sessions: memory.NewSessionStore(),
	})

	result, err := service.BeginLogin(context.Background(), "")

	require.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "redirect URL is required")
}

func TestAuthService_BeginLogin_NoProvider(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Sessions: memory.NewSessionStore(),
	})

	_, err := service.BeginLogin(context.Background(), "http://localhost:8080/auth/callback")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestAuthService_CompleteLogin_Success(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	sessions := memory.NewSessionStore()
	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
	})

	result, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "auth-code",
		State: "state-1",
		Nonce: "nonce-1",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Session.ID)
	assert.Equal(t, "mock-user-1", result.Session.UserID)
	assert.Equal(t, "mock.user@example.com", result.Session.Email)
	assert.Equal(t, domainauth.RoleUser, result.Session.Role)

	// The session must be retrievable by its token.
	stored, err := sessions.Get(context.Background(), result.Session.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Session.UserID, stored.UserID)
}

func TestAuthService_CompleteLogin_FederatedIdentityNeverAdmin(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	provider.ExchangeFunc = func(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{
			ID:        "sneaky-user",
			Email:     "sneaky@example.com",
			Role:      domainauth.RoleAdmin,
			ExpiresAt: time.Now().Add(time.Hour),
		}, nil
	}

	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: memory.NewSessionStore(),
	})

	result, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "auth-code",
		State: "state-1",
	})

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleUser, result.Session.Role)
}

func TestAuthService_CompleteLogin_MissingInputs(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Provider: mockauth.NewMockAuthProvider(),
		Sessions: memory.NewSessionStore(),
	})

	_, err := service.CompleteLogin(context.Background(), CompleteLoginInput{State: "state-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authorization code")

	_, err = service.CompleteLogin(context.Background(), CompleteLoginInput{Code: "auth-code"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state parameter")
}

func TestAuthService_CompleteLogin_ExchangeFailure(t *testing.T) {
	provider := mockauth.NewMockAuthProvider()
	provider.ExchangeFunc = func(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
		return domainauth.Identity{}, domainauth.ErrTokenExchangeFailed
	}

	sessions := memory.NewSessionStore()
	service := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Sessions: sessions,
	})

	_, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "bad-code",
		State: "state-1",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, domainauth.ErrTokenExchangeFailed)
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_CompleteLogin_SaveFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

	service := NewAuthService(AuthServiceOptions{
		Provider: mockauth.NewMockAuthProvider(),
		Sessions: store,
	})

	_, err := service.CompleteLogin(context.Background(), CompleteLoginInput{
		Code:  "auth-code",
		State: "state-1",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save session")
}

func TestAuthService_AdminLogin_Success(t *testing.T) {
	sessions := memory.NewSessionStore()
	recorder := &mockauth.OperatorRecorderSpy{}
	service := NewAuthService(AuthServiceOptions{
		Local:     mockauth.NewMockLocalAuthenticator("admin", "hunter2"),
		Sessions:  sessions,
		Operators: recorder,
	})

	result, err := service.AdminLogin(context.Background(), "admin", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, domainauth.LocalAdminID, result.Session.UserID)
	assert.Equal(t, domainauth.RoleAdmin, result.Session.Role)
	assert.Equal(t, 1, sessions.Len())

	require.Len(t, recorder.Calls, 1)
	assert.Equal(t, domainauth.LocalAdminID, recorder.Calls[0].UserID)
}

func TestAuthService_AdminLogin_InvalidCredentials(t *testing.T) {
	sessions := memory.NewSessionStore()
	service := NewAuthService(AuthServiceOptions{
		Local:    mockauth.NewMockLocalAuthenticator("admin", "hunter2"),
		Sessions: sessions,
	})

	result, err := service.AdminLogin(context.Background(), "admin", "wrong")

	require.Error(t, err)
	assert.ErrorIs(t, err, domainauth.ErrInvalidCredentials)
	assert.Nil(t, result)
	// Failed logins must leave no session behind.
	assert.Equal(t, 0, sessions.Len())
}

func TestAuthService_AdminLogin_RecorderFailureDoesNotFailLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockOperatorRecorder(ctrl)
	recorder.EXPECT().RecordLogin(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	service := NewAuthService(AuthServiceOptions{
		Local:     mockauth.NewMockLocalAuthenticator("admin", "hunter2"),
		Sessions:  memory.NewSessionStore(),
		Operators: recorder,
		Logger:    slog.Default(),
	})

	result, err := service.AdminLogin(context.Background(), "admin", "hunter2")

	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, result.Session.Role)
}

func TestAuthService_AdminLogin_NotConfigured(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{
		Sessions: memory.NewSessionStore(),
	})

	_, err := service.AdminLogin(context.Background(), "admin", "hunter2")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestAuthService_CreateSession_DefaultTTL(t *testing.T) {
	sessions := memory.NewSessionStore()
	service := NewAuthService(AuthServiceOptions{Sessions: sessions})

	session, err := service.CreateSession(context.Background(), domainauth.Identity{
		ID:    "user-1",
		Email: "user@example.com",
		Role:  domainauth.RoleUser,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.WithinDuration(t, time.Now().Add(defaultSessionTTL), session.ExpiresAt, time.Minute)
}

func TestAuthService_CreateSession_RequiresIdentity(t *testing.T) {
	service := NewAuthService(AuthServiceOptions{Sessions: memory.NewSessionStore()})

	_, err := service.CreateSession(context.Background(), domainauth.Identity{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity is required")
}

func TestAuthService_GetSession(t *testing.T) {
	sessions := memory.NewSessionStore()
	service := NewAuthService(AuthServiceOptions{Sessions: sessions})

	created, err := service.CreateSession(context.Background(), domainauth.Identity{
		ID:        "user-1",
		Email:     "user@example.com",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		session, err := service.GetSession(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, "user-1", session.UserID)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := service.GetSession(context.Background(), "")
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := service.GetSession(context.Background(), "nope")
		assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
	})
}

func TestAuthService_GetSession_ExpiredIsCleanedUp(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockSessionStore(ctrl)
	expired := domainauth.Session{
		ID:        "expired",
		UserID:    "user-1",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	store.EXPECT().Get(gomock.Any(), "expired").Return(expired, nil)
	store.EXPECT().Delete(gomock.Any(), "expired").Return(nil)

	service := NewAuthService(AuthServiceOptions{Sessions: store})

	_, err := service.GetSession(context.Background(), "expired")

	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	sessions := memory.NewSessionStore()
	service := NewAuthService(AuthServiceOptions{Sessions: sessions})

	created, err := service.CreateSession(context.Background(), domainauth.Identity{
		ID:        "user-1",
		Role:      domainauth.RoleUser,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, service.Logout(context.Background(), created.ID))
	_, err = service.GetSession(context.Background(), created.ID)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	// Logout is idempotent: repeating it and logging out unknown or empty
	// tokens all succeed.
	assert.NoError(t, service.Logout(context.Background(), created.ID))
	assert.NoError(t, service.Logout(context.Background(), "never-existed"))
	assert.NoError(t, service.Logout(context.Background(), ""))
}

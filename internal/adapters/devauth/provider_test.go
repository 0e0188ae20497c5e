package devauth

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/fleetyard/fleet-ui-api/internal/domain/auth"
	"github.com/fleetyard/fleet-ui-api/internal/ports"
)

func TestNewProvider_RequiresUserAndEmail(t *testing.T) {
	_, err := NewProvider(Config{Email: "dev@example.com"})
	require.Error(t, err)

	_, err = NewProvider(Config{UserID: "dev-user"})
	require.Error(t, err)
}

func TestProvider_BeginReturnsLocalCallback(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com"})
	require.NoError(t, err)

	authURL, state, nonce, err := p.Begin(context.Background(), ports.BeginInput{RedirectURL: "/"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(authURL, "/auth/callback?code=dev&state="))
	assert.NotEmpty(t, state)
	assert.NotEmpty(t, nonce)
	assert.Contains(t, authURL, state)
}

func TestProvider_ExchangeReturnsConfiguredIdentity(t *testing.T) {
	p, err := NewProvider(Config{UserID: "dev-user", Email: "dev@example.com", Name: "Dev User"})
	require.NoError(t, err)

	id, err := p.Exchange(context.Background(), ports.ExchangeInput{Code: "dev"})
	require.NoError(t, err)
	assert.Equal(t, "dev-user", id.ID)
	assert.Equal(t, "dev@example.com", id.Email)
	assert.Equal(t, "Dev User", id.Name)
	assert.Equal(t, domainauth.RoleUser, id.Role)
	assert.False(t, id.ExpiresAt.IsZero())
}

package bootstrap

import (
	"log/slog"

	"github.com/fleetyard/fleet-ui-api/config"
	"github.com/fleetyard/fleet-ui-api/internal/adapters/devauth"
	"github.com/fleetyard/fleet-ui-api/internal/adapters/localadmin"
	"github.com/fleetyard/fleet-ui-api/internal/adapters/memory"
	"github.com/fleetyard/fleet-ui-api/internal/adapters/oidc"
	"github.com/fleetyard/fleet-ui-api/internal/adapters/operators"
	redisadapter "github.com/fleetyard/fleet-ui-api/internal/adapters/redis"
	"github.com/fleetyard/fleet-ui-api/internal/ports"
	"github.com/fleetyard/fleet-ui-api/internal/service"
)

// AuthConfig contains configuration for the auth service.
type AuthConfig struct {
	Auth   config.AuthConfig
	Stores *Stores
	Logger *slog.Logger
}

// BuildAuthService wires the auth service from the configured mode: federated
// provider (real OIDC or the dev short-circuit), local admin authenticator,
// session store (Redis when connected, in-process otherwise), and the
// optional operator login recorder.
func BuildAuthService(cfg AuthConfig) *service.AuthService {
	sessions := buildSessionStore(cfg)

	var recorder ports.OperatorRecorder
	if cfg.Stores != nil && cfg.Stores.DB != nil {
		recorder = operators.NewRecorder(cfg.Stores.DB, cfg.Logger)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider:  buildProvider(cfg),
		Local:     buildLocalAuthenticator(cfg),
		Sessions:  sessions,
		Operators: recorder,
		Logger:    cfg.Logger,
	})
}

func buildSessionStore(cfg AuthConfig) ports.SessionStore {
	if cfg.Stores != nil && cfg.Stores.Redis != nil {
		return redisadapter.NewSessionStoreWithPrefix(cfg.Stores.Redis, "session:")
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("redis not configured; sessions are in-process and lost on restart")
	}
	return memory.NewSessionStore()
}

//nolint:ireturn // the provider kind depends on runtime configuration
func buildProvider(cfg AuthConfig) ports.AuthProvider {
	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		prov, err := devauth.NewProvider(devauth.Config{
			UserID: cfg.Auth.DevAuth.UserID,
			Email:  cfg.Auth.DevAuth.Email,
			Name:   cfg.Auth.DevAuth.Name,
		})
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("failed to create dev auth provider, federated login disabled", "error", err)
			}
			return nil
		}
		return prov

	case config.AuthModeOAuth:
		oauth := cfg.Auth.OAuth
		if oauth.DiscoveryURL == "" || oauth.ClientID == "" || oauth.ClientSecret == "" {
			if cfg.Logger != nil {
				cfg.Logger.Warn("AuthModeOAuth selected but required config missing; federated login disabled",
					"discovery_url_empty", oauth.DiscoveryURL == "",
					"client_id_empty", oauth.ClientID == "",
					"client_secret_empty", oauth.ClientSecret == "",
				)
			}
			return nil
		}

		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     oauth.ClientID,
			ClientSecret: oauth.ClientSecret,
			RedirectURL:  oauth.RedirectURL,
			Scope:        oauth.Scope,
			DiscoveryURL: oauth.DiscoveryURL,
		})
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("failed to create OIDC provider, federated login disabled", "error", err)
			}
			return nil
		}
		return prov

	default:
		return nil
	}
}

//nolint:ireturn // nil means the local path is simply not offered
func buildLocalAuthenticator(cfg AuthConfig) ports.LocalAuthenticator {
	admin := cfg.Auth.Admin
	if admin.Password == "" {
		if cfg.Logger != nil {
			cfg.Logger.Warn("ADMIN_PASSWORD not set; local admin login disabled")
		}
		return nil
	}

	auth, err := localadmin.NewAuthenticator(localadmin.Config{
		Username:        admin.Username,
		Password:        admin.Password,
		Email:           admin.Email,
		SessionDuration: admin.SessionDuration,
	})
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Warn("failed to create local admin authenticator", "error", err)
		}
		return nil
	}
	return auth
}

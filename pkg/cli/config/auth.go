package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

// Auth holds the admin account used by the dashboard
type Auth struct {
	noAuth      bool
	username    string
	password    string
	tokenSecret string
	tokenTTL    time.Duration
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "no-auth",
			Usage:       "Skip admin authentication (development only)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("IAWASHING_NO_AUTH"),
			Destination: &x.noAuth,
		},
		&cli.StringFlag{
			Name:        "admin-username",
			Usage:       "Admin login name",
			Category:    "Authentication",
			Value:       usecase.DefaultAdminUsername,
			Sources:     cli.EnvVars("IAWASHING_ADMIN_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "admin-password",
			Usage:       "Admin password",
			Category:    "Authentication",
			Sources:     cli.EnvVars("IAWASHING_ADMIN_PASSWORD"),
			Destination: &x.password,
		},
		&cli.StringFlag{
			Name:        "token-secret",
			Usage:       "HMAC secret for admin tokens (random per process if empty)",
			Category:    "Authentication",
			Sources:     cli.EnvVars("IAWASHING_TOKEN_SECRET"),
			Destination: &x.tokenSecret,
		},
		&cli.DurationFlag{
			Name:        "token-ttl",
			Usage:       "Admin token lifetime",
			Category:    "Authentication",
			Value:       usecase.DefaultTokenTTL,
			Sources:     cli.EnvVars("IAWASHING_TOKEN_TTL"),
			Destination: &x.tokenTTL,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("no-auth", x.noAuth),
		slog.String("username", x.username),
		slog.Int("password.len", len(x.password)),
		slog.Int("token-secret.len", len(x.tokenSecret)),
		slog.Duration("token-ttl", x.tokenTTL),
	)
}

// IsNoAuthMode reports whether admin authentication is disabled
func (x *Auth) IsNoAuthMode() bool {
	return x.noAuth
}

// Configure builds the auth use case. No-auth mode wins over a configured
// password.
func (x *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.noAuth {
		logging.Default().Warn("Running in no-auth mode (development only)")
		return usecase.NewNoAuthnUseCase(), nil
	}
	if x.password == "" {
		return nil, goerr.Wrap(ErrMissingPassword, "failed to configure authentication")
	}

	opts := []usecase.AuthOption{
		usecase.WithTokenTTL(x.tokenTTL),
	}
	if x.username != "" {
		opts = append(opts, usecase.WithUsername(x.username))
	}
	if x.tokenSecret != "" {
		opts = append(opts, usecase.WithTokenSecret([]byte(x.tokenSecret)))
	}

	uc, err := usecase.NewAuthUseCase(repo, x.password, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create auth use case")
	}
	return uc, nil
}

package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	"github.com/yonnovia/iawashing/pkg/domain/model"
	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
	"github.com/yonnovia/iawashing/pkg/utils/logging"
)

const (
	DefaultTokenTTL      = time.Hour
	DefaultAdminUsername = "admin"
	tokenIssuer          = "iawashing"
	roleClaim            = "role"
)

// AuthUseCaseInterface authenticates dashboard administrators.
type AuthUseCaseInterface interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
	IsNoAuthn() bool
}

// AuthUseCase checks a single configured admin account and issues HS256
// JWTs.
type AuthUseCase struct {
	repo     interfaces.Repository
	username string
	password string
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

var _ AuthUseCaseInterface = &AuthUseCase{}

// AuthOption is a functional option for AuthUseCase
type AuthOption func(*AuthUseCase)

// WithUsername sets the admin login name
func WithUsername(username string) AuthOption {
	return func(uc *AuthUseCase) {
		uc.username = username
	}
}

// WithTokenSecret sets the HMAC key. Without it a random key is generated
// and tokens do not survive a restart.
func WithTokenSecret(secret []byte) AuthOption {
	return func(uc *AuthUseCase) {
		uc.secret = secret
	}
}

// WithTokenTTL sets the token lifetime
func WithTokenTTL(ttl time.Duration) AuthOption {
	return func(uc *AuthUseCase) {
		uc.ttl = ttl
	}
}

// WithAuthClock overrides time.Now, for tests.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(repo interfaces.Repository, password string, options ...AuthOption) (*AuthUseCase, error) {
	if password == "" {
		return nil, goerr.New("admin password is required")
	}

	uc := &AuthUseCase{
		repo:     repo,
		username: DefaultAdminUsername,
		password: password,
		ttl:      DefaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range options {
		opt(uc)
	}

	if len(uc.secret) == 0 {
		uc.secret = make([]byte, 32)
		if _, err := rand.Read(uc.secret); err != nil {
			return nil, goerr.Wrap(err, "failed to generate token secret")
		}
		logging.Default().Warn("No token secret configured, generated an ephemeral one")
	}
	if uc.ttl <= 0 {
		uc.ttl = DefaultTokenTTL
	}

	return uc, nil
}

// equal compares digests so that the comparison time does not depend on
// the length of either input.
func equal(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	if username == "" {
		username = uc.username
	}
	// Evaluate both to keep timing independent of which one is wrong.
	userOK := equal(username, uc.username)
	passOK := equal(password, uc.password)
	if !userOK || !passOK {
		logging.From(ctx).Warn("admin login rejected", "username", username)
		return nil, goerr.Wrap(ErrInvalidCredentials, "login failed")
	}

	now := uc.now()
	expiresAt := now.Add(uc.ttl)
	tok, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(username).
		IssuedAt(now).
		NotBefore(now).
		Expiration(expiresAt).
		Claim(roleClaim, auth.RoleAdmin).
		Build()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, uc.secret))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to sign token")
	}

	if uc.repo != nil {
		log := model.NewAuditLog(username, model.AuditActionAdminLogin, nil, now.UTC())
		if err := uc.repo.AuditLog().Create(ctx, log); err != nil {
			_ = errutil.Handle(ctx, err, "failed to write audit log")
		}
	}

	return &auth.Session{
		AccessToken: string(signed),
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
	}, nil
}

func (uc *AuthUseCase) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, goerr.Wrap(ErrInvalidToken, "missing token")
	}

	tok, err := jwt.Parse([]byte(token),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidToken, "token rejected", goerr.V("reason", err.Error()))
	}

	role, _ := tok.Get(roleClaim)
	if r, ok := role.(string); !ok || r != auth.RoleAdmin {
		return nil, goerr.Wrap(ErrInvalidToken, "token has no admin role")
	}

	return &auth.Claims{
		Subject:   tok.Subject(),
		Role:      auth.RoleAdmin,
		IssuedAt:  tok.IssuedAt(),
		ExpiresAt: tok.Expiration(),
	}, nil
}

func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

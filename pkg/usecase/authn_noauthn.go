package usecase

import (
	"context"
	"time"

	"github.com/yonnovia/iawashing/pkg/domain/model/auth"
)

const noAuthnSubject = "dev-admin"

// NoAuthnUseCase accepts every request as admin (for development/testing)
type NoAuthnUseCase struct{}

var _ AuthUseCaseInterface = &NoAuthnUseCase{}

func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{}
}

// Login returns a placeholder token that ValidateToken accepts
func (uc *NoAuthnUseCase) Login(ctx context.Context, username, password string) (*auth.Session, error) {
	return &auth.Session{
		AccessToken: "no-authn",
		TokenType:   "Bearer",
		ExpiresAt:   time.Now().Add(DefaultTokenTTL).UTC(),
	}, nil
}

// ValidateToken always returns admin claims
func (uc *NoAuthnUseCase) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return &auth.Claims{Subject: noAuthnSubject, Role: auth.RoleAdmin}, nil
}

// IsNoAuthn returns true for NoAuthnUseCase
func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}

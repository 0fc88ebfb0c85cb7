package service

import (
	"context"

	"github.com/mberkey/authflow/internal/domain"
)

// CredentialStore defines the identity provider operations the workflows
// sequence. Every operation is single-shot: no internal retries, and the
// originating error is reported to the caller unmodified.
type CredentialStore interface {
	SignIn(ctx context.Context, email, password string) (*domain.Session, error)
	CreateAccount(ctx context.Context, email, password, fullName string) (*domain.Session, error)
	SignInWithFederatedCredential(ctx context.Context, idToken, accessToken string) (*domain.Session, *domain.FederatedIdentity, error)
	SignOut(ctx context.Context, accountID string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	ValidateToken(ctx context.Context, token string) (*domain.SessionClaims, error)
	CurrentSessionAccountID(ctx context.Context, token string) (string, bool)
}

// FederatedVerifier exchanges a third-party identity assertion for the
// subject's claims.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken, accessToken string) (*domain.FederatedIdentity, error)
}

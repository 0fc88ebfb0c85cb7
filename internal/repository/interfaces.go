package repository

import (
	"context"
	"time"

	"github.com/mberkey/authflow/internal/domain"
)

// AccountRepository defines methods for identity provider account rows
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.Account, error)
	UpdateLastLogin(ctx context.Context, accountID string) error
	UpdatePassword(ctx context.Context, accountID, passwordHash string) error
}

// ProfileRepository defines methods for profile documents keyed by account
// id. Upsert merges the given fields into the document, creating it if
// absent and leaving unspecified fields untouched. PatchField merges a
// single field without clobbering the rest.
type ProfileRepository interface {
	Upsert(ctx context.Context, accountID string, fields map[string]string) error
	Fetch(ctx context.Context, accountID string) (*domain.UserRecord, error)
	PatchField(ctx context.Context, accountID, field, value string) error
}

// ResetTokenRepository defines methods for single-use password reset tokens
type ResetTokenRepository interface {
	Create(ctx context.Context, token, accountID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

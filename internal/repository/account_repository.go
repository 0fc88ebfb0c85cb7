package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/mberkey/authflow/internal/domain"
	"github.com/mberkey/authflow/pkg/database"
)

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *database.Postgres
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.Postgres) AccountRepository {
	return &accountRepository{db: db}
}

// Create creates a new account in the database
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, email, password_hash, full_name, provider, provider_subject, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	// Generate UUID if not provided
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		account.ID,
		account.Email,
		nullIfEmpty(account.PasswordHash),
		account.FullName,
		account.Provider,
		nullIfEmpty(account.ProviderSubject),
		account.CreatedAt,
		account.UpdatedAt,
	)

	if err != nil {
		// Check for unique constraint violation (duplicate email)
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("account with email %s already exists: %w", account.Email, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := selectAccount + ` WHERE email = $1`

	account, err := r.scanAccount(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return account, nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := selectAccount + ` WHERE id = $1`

	account, err := r.scanAccount(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return account, nil
}

// GetByProviderSubject retrieves an account by federated provider and subject
func (r *accountRepository) GetByProviderSubject(ctx context.Context, provider, subject string) (*domain.Account, error) {
	query := selectAccount + ` WHERE provider = $1 AND provider_subject = $2`

	account, err := r.scanAccount(r.db.DB.QueryRowContext(ctx, query, provider, subject))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account for %s subject not found: %w", provider, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by provider subject: %w", err)
	}

	return account, nil
}

// UpdateLastLogin updates the last login timestamp for an account
func (r *accountRepository) UpdateLastLogin(ctx context.Context, accountID string) error {
	query := `
		UPDATE accounts
		SET last_login_at = $1
		WHERE id = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", accountID, ErrNotFound)
	}

	return nil
}

// UpdatePassword replaces the password hash for an account
func (r *accountRepository) UpdatePassword(ctx context.Context, accountID, passwordHash string) error {
	query := `
		UPDATE accounts
		SET password_hash = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.DB.ExecContext(ctx, query, passwordHash, time.Now(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", accountID, ErrNotFound)
	}

	return nil
}

const selectAccount = `
	SELECT id, email, password_hash, full_name, provider, provider_subject, created_at, updated_at, last_login_at
	FROM accounts`

func (r *accountRepository) scanAccount(row *sql.Row) (*domain.Account, error) {
	account := &domain.Account{}
	var passwordHash, providerSubject sql.NullString
	var lastLoginAt sql.NullTime

	err := row.Scan(
		&account.ID,
		&account.Email,
		&passwordHash,
		&account.FullName,
		&account.Provider,
		&providerSubject,
		&account.CreatedAt,
		&account.UpdatedAt,
		&lastLoginAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		account.PasswordHash = passwordHash.String
	}
	if providerSubject.Valid {
		account.ProviderSubject = providerSubject.String
	}
	if lastLoginAt.Valid {
		account.LastLoginAt = &lastLoginAt.Time
	}

	return account, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

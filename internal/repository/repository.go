package repository

import (
	"github.com/mberkey/authflow/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	Account    AccountRepository
	Profile    ProfileRepository
	ResetToken ResetTokenRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres, redis *database.Redis) *Repositories {
	return &Repositories{
		Account:    NewAccountRepository(db),
		Profile:    NewProfileRepository(redis),
		ResetToken: NewResetTokenRepository(redis),
	}
}

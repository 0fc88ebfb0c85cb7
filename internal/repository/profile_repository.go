package repository

import (
	"context"
	"fmt"

	"github.com/mberkey/authflow/internal/domain"
	"github.com/mberkey/authflow/pkg/database"
)

// profileRepository implements ProfileRepository on a Redis hash per account.
// Hash semantics line up with the document store contract: HSET merges the
// given fields and creates the key when absent, a fetch of a missing key
// yields an empty map, and a single-field HSET never touches siblings.
type profileRepository struct {
	redis *database.Redis
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(redis *database.Redis) ProfileRepository {
	return &profileRepository{redis: redis}
}

func profileKey(accountID string) string {
	return fmt.Sprintf("profile:%s", accountID)
}

// Upsert merges fields into the profile document for accountID
func (r *profileRepository) Upsert(ctx context.Context, accountID string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}

	pairs := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		pairs = append(pairs, k, v)
	}

	if err := r.redis.Client.HSet(ctx, profileKey(accountID), pairs...).Err(); err != nil {
		return fmt.Errorf("failed to upsert profile %s: %w", accountID, err)
	}
	return nil
}

// Fetch retrieves the profile document for accountID
func (r *profileRepository) Fetch(ctx context.Context, accountID string) (*domain.UserRecord, error) {
	fields, err := r.redis.Client.HGetAll(ctx, profileKey(accountID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile %s: %w", accountID, err)
	}

	if len(fields) == 0 {
		return nil, fmt.Errorf("profile for account %s not found: %w", accountID, ErrNotFound)
	}

	return domain.NewUserRecord(accountID, fields), nil
}

// PatchField merges a single field into the profile document for accountID
func (r *profileRepository) PatchField(ctx context.Context, accountID, field, value string) error {
	if err := r.redis.Client.HSet(ctx, profileKey(accountID), field, value).Err(); err != nil {
		return fmt.Errorf("failed to patch profile %s field %s: %w", accountID, field, err)
	}
	return nil
}

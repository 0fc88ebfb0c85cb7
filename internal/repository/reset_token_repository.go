package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mberkey/authflow/pkg/database"
	"github.com/redis/go-redis/v9"
)

// resetTokenRepository implements ResetTokenRepository in Redis
type resetTokenRepository struct {
	redis *database.Redis
}

// NewResetTokenRepository creates a new reset token repository
func NewResetTokenRepository(redis *database.Redis) ResetTokenRepository {
	return &resetTokenRepository{redis: redis}
}

func resetKey(token string) string {
	return fmt.Sprintf("reset:%s", token)
}

// Create stores a single-use reset token mapped to the account id with a TTL
func (r *resetTokenRepository) Create(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if err := r.redis.Client.Set(ctx, resetKey(token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store reset token: %w", err)
	}
	return nil
}

// Consume returns the account id for a token and deletes it so the token
// cannot be replayed
func (r *resetTokenRepository) Consume(ctx context.Context, token string) (string, error) {
	accountID, err := r.redis.Client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", fmt.Errorf("reset token not found or expired: %w", ErrNotFound)
		}
		return "", fmt.Errorf("failed to consume reset token: %w", err)
	}
	return accountID, nil
}

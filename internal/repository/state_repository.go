package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const oauthStatePrefix = "google-auth-state:"

// StateRepository keeps one-time OAuth state values in Redis
type StateRepository struct {
	client *redis.Client
}

func NewStateRepository(client *redis.Client) *StateRepository {
	return &StateRepository{
		client: client,
	}
}

func (r *StateRepository) Save(ctx context.Context, state string, ttl time.Duration) error {
	if err := r.client.Set(ctx, oauthStatePrefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("error saving OAuth state: %w", err)
	}
	return nil
}

// Consume deletes the state and reports whether it was present
func (r *StateRepository) Consume(ctx context.Context, state string) (bool, error) {
	err := r.client.GetDel(ctx, oauthStatePrefix+state).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("error reading OAuth state: %w", err)
	}
	return true, nil
}

package repository

import (
	"context"
	"encoding/json"
	"time"

	apperrors "loan-risk-workers/internal/common/errors"
	"loan-risk-workers/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	profileKeyPrefix  = "loan:risk-profile:"
	DefaultProfileTTL = 24 * time.Hour
)

// ProfileCache keeps the latest risk profile of each application in Redis.
type ProfileCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProfileCache(client *redis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	return &ProfileCache{client: client, ttl: ttl}
}

func profileKey(applicationID string) string {
	return profileKeyPrefix + applicationID
}

func (c *ProfileCache) Set(ctx context.Context, applicationID string, p *models.RiskProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return apperrors.NewCacheWriteFailedError(err)
	}
	if err := c.client.Set(ctx, profileKey(applicationID), data, c.ttl).Err(); err != nil {
		return apperrors.NewCacheWriteFailedError(err)
	}
	return nil
}

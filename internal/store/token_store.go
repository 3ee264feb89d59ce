package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

const tokenCacheTTL = 24 * time.Hour

// Tokens resolves a user's push token, Redis cache first, then PostgreSQL.
type Tokens struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewTokens(db *pgxpool.Pool, redisClient *redis.Client) *Tokens {
	return &Tokens{db: db, redisClient: redisClient}
}

func tokenCacheKey(userID string) string {
	return fmt.Sprintf("push_token:%s", userID)
}

// Token returns the user's active Expo push token.
func (t *Tokens) Token(ctx context.Context, userID string) (string, error) {
	cached := t.redisClient.Get(ctx, tokenCacheKey(userID))
	if cached.Err() == nil {
		var token notificationsmodels.PushToken
		if err := json.Unmarshal([]byte(cached.Val()), &token); err == nil && token.ExpoPushToken != "" {
			return token.ExpoPushToken, nil
		}
	}

	var token notificationsmodels.PushToken
	query := `
		SELECT user_id, expo_push_token, platform, active
		FROM push_tokens
		WHERE user_id = $1 AND active = TRUE`

	err := t.db.QueryRow(ctx, query, userID).Scan(
		&token.UserID,
		&token.ExpoPushToken,
		&token.Platform,
		&token.Active,
	)
	if err != nil {
		return "", fmt.Errorf("push token not found: %w", err)
	}

	tokenJSON, _ := json.Marshal(token)
	t.redisClient.Set(ctx, tokenCacheKey(userID), tokenJSON, tokenCacheTTL)

	return token.ExpoPushToken, nil
}

// Upsert registers or refreshes a user's push token, last write wins.
func (t *Tokens) Upsert(ctx context.Context, token *notificationsmodels.PushToken) (string, error) {
	query := `
		INSERT INTO push_tokens (user_id, expo_push_token, platform, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id)
		DO UPDATE SET
			expo_push_token = EXCLUDED.expo_push_token,
			platform = EXCLUDED.platform,
			active = EXCLUDED.active,
			updated_at = NOW()
		RETURNING id`

	var id string
	err := t.db.QueryRow(ctx, query,
		token.UserID,
		token.ExpoPushToken,
		token.Platform,
		true,
	).Scan(&id)
	if err != nil {
		return "", err
	}

	tokenJSON, _ := json.Marshal(token)
	t.redisClient.Set(ctx, tokenCacheKey(token.UserID), tokenJSON, tokenCacheTTL)

	return id, nil
}

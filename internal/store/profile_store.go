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

const profileCacheTTL = time.Hour

// Profiles resolves persona profiles, Redis cache first, then PostgreSQL.
type Profiles struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
}

func NewProfiles(db *pgxpool.Pool, redisClient *redis.Client) *Profiles {
	return &Profiles{db: db, redisClient: redisClient}
}

func profileCacheKey(userID string) string {
	return fmt.Sprintf("profile:%s", userID)
}

// Profile returns the user's persona profile.
func (p *Profiles) Profile(ctx context.Context, userID string) (*notificationsmodels.Profile, error) {
	cached := p.redisClient.Get(ctx, profileCacheKey(userID))
	if cached.Err() == nil {
		var profile notificationsmodels.Profile
		if err := json.Unmarshal([]byte(cached.Val()), &profile); err == nil && profile.UserID != "" {
			return &profile, nil
		}
	}

	var profile notificationsmodels.Profile
	query := `
		SELECT user_id, display_name, recipient_name, tone, relationship_status, special_words, updated_at
		FROM profiles
		WHERE user_id = $1`

	err := p.db.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.DisplayName,
		&profile.RecipientName,
		&profile.Tone,
		&profile.RelationshipStatus,
		&profile.SpecialWords,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("profile not found: %w", err)
	}

	profileJSON, _ := json.Marshal(profile)
	p.redisClient.Set(ctx, profileCacheKey(userID), profileJSON, profileCacheTTL)

	return &profile, nil
}

// Upsert creates or replaces a user's persona profile and refreshes the cache.
func (p *Profiles) Upsert(ctx context.Context, profile *notificationsmodels.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, recipient_name, tone, relationship_status, special_words)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id)
		DO UPDATE SET
			display_name = EXCLUDED.display_name,
			recipient_name = EXCLUDED.recipient_name,
			tone = EXCLUDED.tone,
			relationship_status = EXCLUDED.relationship_status,
			special_words = EXCLUDED.special_words,
			updated_at = NOW()`

	_, err := p.db.Exec(ctx, query,
		profile.UserID,
		profile.DisplayName,
		profile.RecipientName,
		profile.Tone,
		profile.RelationshipStatus,
		profile.SpecialWords,
	)
	if err != nil {
		return err
	}

	profile.UpdatedAt = time.Now()
	profileJSON, _ := json.Marshal(profile)
	p.redisClient.Set(ctx, profileCacheKey(profile.UserID), profileJSON, profileCacheTTL)

	return nil
}

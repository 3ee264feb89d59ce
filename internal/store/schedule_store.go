package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

// Schedules reads and updates notification schedule rows. The due query is
// the only selection the pipeline performs; time-window filtering lives here
// so the pipeline itself only sees a snapshot of due entries.
type Schedules struct {
	db *pgxpool.Pool
}

func NewSchedules(db *pgxpool.Pool) *Schedules {
	return &Schedules{db: db}
}

// Due returns the snapshot of schedule entries whose send window has arrived.
func (s *Schedules) Due(ctx context.Context) ([]notificationsmodels.ScheduleEntry, error) {
	query := `
		SELECT id, user_id, label
		FROM notification_schedules
		WHERE active = TRUE
		  AND (last_sent_at IS NULL OR last_sent_at < NOW() - make_interval(mins => interval_minutes))
		ORDER BY created_at`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []notificationsmodels.ScheduleEntry
	for rows.Next() {
		var e notificationsmodels.ScheduleEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Label); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// MarkProcessed stamps last_sent_at, the sole anti-spam mechanism: the due
// query will not re-select this row until a full interval has passed again.
func (s *Schedules) MarkProcessed(ctx context.Context, scheduleID string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE notification_schedules SET last_sent_at = NOW() WHERE id = $1`,
		scheduleID)
	return err
}

// Upsert creates or updates one schedule slot for a user, keyed by label.
func (s *Schedules) Upsert(ctx context.Context, userID, label string, intervalMinutes int, active bool) (string, error) {
	query := `
		INSERT INTO notification_schedules (user_id, label, interval_minutes, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, label)
		DO UPDATE SET
			interval_minutes = EXCLUDED.interval_minutes,
			active = EXCLUDED.active
		RETURNING id`

	var id string
	err := s.db.QueryRow(ctx, query, userID, label, intervalMinutes, active).Scan(&id)
	return id, err
}

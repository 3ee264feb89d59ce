package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	notificationsmodels "io.winapps.heartline/internal/models/notifications"
)

// DeliveryLogs appends immutable dispatch audit records.
type DeliveryLogs struct {
	db *pgxpool.Pool
}

func NewDeliveryLogs(db *pgxpool.Pool) *DeliveryLogs {
	return &DeliveryLogs{db: db}
}

// Append inserts one record. Rows are never updated or deleted.
func (d *DeliveryLogs) Append(ctx context.Context, rec *notificationsmodels.DeliveryLog) error {
	payloadJSON, err := json.Marshal(rec.Payload)
	if err != nil {
		payloadJSON = []byte("{}")
	}
	responseJSON, err := json.Marshal(rec.ProviderResponse)
	if err != nil {
		responseJSON = []byte("null")
	}

	query := `
		INSERT INTO delivery_logs (id, user_id, schedule_label, token, title, body, payload, provider_response, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11)`

	_, err = d.db.Exec(ctx, query,
		rec.ID,
		rec.UserID,
		rec.ScheduleLabel,
		rec.Token,
		rec.Title,
		rec.Body,
		string(payloadJSON),
		string(responseJSON),
		string(rec.Status),
		rec.Error,
		rec.CreatedAt,
	)
	return err
}

// StatusCounts returns per-status delivery counts for one user over the last
// given number of days.
func (d *DeliveryLogs) StatusCounts(ctx context.Context, userID string, days int) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*)
		FROM delivery_logs
		WHERE user_id = $1 AND created_at > NOW() - make_interval(days => $2)
		GROUP BY status`

	rows, err := d.db.Query(ctx, query, userID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

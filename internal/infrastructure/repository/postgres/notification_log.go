package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kirillkom/docstream/internal/core/domain"
)

// NotificationLog is the Postgres-backed append-only feed. BIGSERIAL hands out
// cursors atomically across instances, so ids stay strictly increasing and
// survive restarts; commit order defines delivery order.
type NotificationLog struct {
	db *sql.DB
}

func NewNotificationLog(db *sql.DB) *NotificationLog {
	return &NotificationLog{db: db}
}

func (l *NotificationLog) Append(ctx context.Context, n *domain.Notification) (int64, error) {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}

	var id int64
	err := l.db.QueryRowContext(ctx, `
INSERT INTO notifications (type, filename, status, result, error_message, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id
`, string(n.Type), n.Filename, string(n.Status), n.Result, n.Error, n.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append notification: %w", err)
	}
	n.ID = id
	return id, nil
}

func (l *NotificationLog) ReadSince(ctx context.Context, sinceID int64) ([]domain.Notification, error) {
	rows, err := l.db.QueryContext(ctx, `
SELECT id, type, filename, status, result, error_message, created_at
FROM notifications
WHERE id > $1
ORDER BY id ASC
`, sinceID)
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var jobType, status string
		if err := rows.Scan(&n.ID, &jobType, &n.Filename, &status, &n.Result, &n.Error, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		n.Type = domain.JobType(jobType)
		n.Status = domain.JobStatus(status)
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

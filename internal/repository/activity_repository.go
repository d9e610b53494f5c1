package repository

import (
	"context"
	"database/sql"

	"github.com/kasraf/service-desk/internal/model"
)

// ActivityRepo appends audit entries to the `activity_logs` table. The
// table is append-only; nothing in the application updates or deletes
// rows.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Append writes one audit entry.
func (r *ActivityRepo) Append(ctx context.Context, entry *model.ActivityLog) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO activity_logs (user_id, action, detail, ip) VALUES (?,?,?,?)",
		entry.UserID, entry.Action, entry.Detail, entry.IP)
	return err
}

// NotificationRepo persists user-facing notification records.
type NotificationRepo struct{ DB *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{DB: db} }

// Create inserts a notification for a user.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO notifications (user_id, title, body) VALUES (?,?,?)",
		n.UserID, n.Title, n.Body)
	return err
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID uint64, limit, offset int) ([]model.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,title,body,read_at,created_at FROM notifications WHERE user_id=? ORDER BY id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var (
			n      model.Notification
			readAt sql.NullTime
		)
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &readAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead marks a notification read. Scoped to the owner so one user
// cannot mark another user's notifications.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE notifications SET read_at=NOW() WHERE id=? AND user_id=? AND read_at IS NULL",
		id, userID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM notifications WHERE id=? AND user_id=?", id, userID).Scan(&exists); err == sql.ErrNoRows {
			return ErrNotFound
		}
	}
	return nil
}

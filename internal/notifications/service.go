package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pipmatrix/internal/types"
)

// Querier is satisfied by both *pgxpool.Pool and pgx.Tx, so callers can
// write a notification inside the transaction that triggered it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Notification struct {
	ID        int64                  `json:"id"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Type      types.NotificationType `json:"type"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"created_at"`
	TimeAgo   string                 `json:"time_ago"`
}

func Insert(ctx context.Context, q Querier, userID int64, title, message string, kind types.NotificationType) error {
	_, err := q.Exec(ctx, "insert into notifications (user_id, title, message, type) values ($1, $2, $3, $4)", userID, title, message, string(kind))
	return err
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

func (s *Service) List(ctx context.Context, userID int64, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, "select id, title, message, type, read, created_at from notifications where user_id = $1 order by created_at desc limit $2", userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	now := time.Now().UTC()
	out := []Notification{}
	for rows.Next() {
		var n Notification
		var kind string
		if err := rows.Scan(&n.ID, &n.Title, &n.Message, &kind, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = types.NotificationType(kind)
		n.TimeAgo = timeAgo(n.CreatedAt, now)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	_, err := s.pool.Exec(ctx, "update notifications set read = true where id = $1 and user_id = $2", notificationID, userID)
	return err
}

func timeAgo(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff >= 24*time.Hour:
		days := int(diff.Hours()) / 24
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	case diff >= time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case diff >= time.Minute:
		minutes := int(diff.Minutes())
		return fmt.Sprintf("%d minute%s ago", minutes, plural(minutes))
	default:
		return "Just now"
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

package support

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"pipmatrix/internal/types"
)

type Service struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

func NewService(pool *pgxpool.Pool, logger zerolog.Logger) *Service {
	return &Service{pool: pool, logger: logger.With().Str("component", "support").Logger()}
}

type Ticket struct {
	ID         int64      `json:"id"`
	Subject    string     `json:"subject"`
	Message    string     `json:"message"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	Response   string     `json:"response,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

func (s *Service) List(ctx context.Context, userID int64) ([]Ticket, error) {
	rows, err := s.pool.Query(ctx, `
		select id, subject, message, priority, status, coalesce(response, ''), created_at, resolved_at
		from support_tickets where user_id = $1 order by created_at desc
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Ticket{}
	for rows.Next() {
		var t Ticket
		if err := rows.Scan(&t.ID, &t.Subject, &t.Message, &t.Priority, &t.Status, &t.Response, &t.CreatedAt, &t.ResolvedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Service) Create(ctx context.Context, userID int64, subject, message, priority string) (Ticket, error) {
	if subject == "" || message == "" {
		return Ticket{}, errors.New("subject and message are required")
	}
	switch types.TicketPriority(priority) {
	case types.TicketPriorityLow, types.TicketPriorityMedium, types.TicketPriorityHigh:
	default:
		priority = string(types.TicketPriorityMedium)
	}
	var t Ticket
	err := s.pool.QueryRow(ctx, `
		insert into support_tickets (user_id, subject, message, priority, status)
		values ($1, $2, $3, $4, 'open')
		returning id, subject, message, priority, status, '', created_at, resolved_at
	`, userID, subject, message, priority).Scan(&t.ID, &t.Subject, &t.Message, &t.Priority, &t.Status, &t.Response, &t.CreatedAt, &t.ResolvedAt)
	if err != nil {
		return Ticket{}, err
	}
	s.logger.Info().Int64("user_id", userID).Int64("ticket_id", t.ID).Msg("support ticket created")
	return t, nil
}

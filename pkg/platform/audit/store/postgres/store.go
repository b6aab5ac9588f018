package postgres

import (
	"context"
	"database/sql"
	"fmt"

	id "rngenius/pkg/domain"
	audit "rngenius/pkg/platform/audit"
)

// Store persists audit events in the audit_events table.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_events (action, user_id, subject, request_id, client_ip, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		event.Action, event.ActorID.Int64(), event.Subject,
		event.RequestID, event.IP, event.UserAgent, event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByActor(ctx context.Context, actorID id.UserID) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, user_id, subject, request_id, client_ip, user_agent, created_at
		 FROM audit_events WHERE user_id = $1 ORDER BY id DESC`,
		actorID.Int64(),
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, user_id, subject, request_id, client_ip, user_agent, created_at
		 FROM audit_events ORDER BY id DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event
	for rows.Next() {
		var event audit.Event
		err := rows.Scan(
			&event.Action,
			&event.ActorID,
			&event.Subject,
			&event.RequestID,
			&event.IP,
			&event.UserAgent,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}

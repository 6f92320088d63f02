package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// StatusLogStore is the append-only audit trail. Rows are keyed by
// (document_id, ts): a redelivered event lands on the existing row, so
// retries never grow the history.
type StatusLogStore struct {
	db *sql.DB
}

func NewStatusLogStore(db *sql.DB) *StatusLogStore {
	return &StatusLogStore{db: db}
}

func (s *StatusLogStore) Append(ctx context.Context, event domain.StatusEvent) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO status_events (document_id, ts, status, message)
VALUES ($1,$2,$3,$4)
ON CONFLICT (document_id, ts) DO NOTHING
`, event.DocumentID, event.Timestamp, event.Status, event.Message)
	if err != nil {
		return fmt.Errorf("append status event: %w", err)
	}
	return nil
}

// ListByDocument returns rows in unspecified order; callers sort by
// timestamp themselves.
func (s *StatusLogStore) ListByDocument(ctx context.Context, documentID string) ([]domain.StatusEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT document_id, ts, status, message
FROM status_events
WHERE document_id = $1
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query status events: %w", err)
	}
	defer rows.Close()

	var events []domain.StatusEvent
	for rows.Next() {
		var event domain.StatusEvent
		if err := rows.Scan(&event.DocumentID, &event.Timestamp, &event.Status, &event.Message); err != nil {
			return nil, fmt.Errorf("scan status event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status events: %w", err)
	}
	return events, nil
}

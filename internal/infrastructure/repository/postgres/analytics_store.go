package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// AnalyticsStore keeps one aggregate row per day; re-running the snapshot
// job within a day overwrites the row.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

func (s *AnalyticsStore) SaveSnapshot(ctx context.Context, snapshot domain.AnalyticsSnapshot) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO analytics_snapshots (date, total_documents, completed_documents)
VALUES ($1,$2,$3)
ON CONFLICT (date) DO UPDATE SET
	total_documents = EXCLUDED.total_documents,
	completed_documents = EXCLUDED.completed_documents
`, snapshot.Date, snapshot.TotalDocuments, snapshot.CompletedDocuments)
	if err != nil {
		return fmt.Errorf("upsert analytics snapshot: %w", err)
	}
	return nil
}

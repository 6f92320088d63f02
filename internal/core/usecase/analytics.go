package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// AnalyticsUseCase writes a per-day aggregate of pipeline throughput. The
// worker runs it on a ticker; re-running within a day overwrites the same row.
type AnalyticsUseCase struct {
	docs      ports.DocumentStore
	snapshots ports.AnalyticsStore
	now       func() time.Time
}

func NewAnalyticsUseCase(docs ports.DocumentStore, snapshots ports.AnalyticsStore) *AnalyticsUseCase {
	return &AnalyticsUseCase{
		docs:      docs,
		snapshots: snapshots,
		now:       time.Now,
	}
}

func (uc *AnalyticsUseCase) Snapshot(ctx context.Context) (domain.AnalyticsSnapshot, error) {
	docs, err := uc.docs.List(ctx)
	if err != nil {
		return domain.AnalyticsSnapshot{}, fmt.Errorf("scan documents: %w", err)
	}

	completed := 0
	for _, doc := range docs {
		if doc.Status == domain.StatusCompleted {
			completed++
		}
	}

	snapshot := domain.AnalyticsSnapshot{
		Date:               uc.now().UTC().Format("2006-01-02"),
		TotalDocuments:     len(docs),
		CompletedDocuments: completed,
	}
	if err := uc.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return domain.AnalyticsSnapshot{}, fmt.Errorf("save analytics snapshot: %w", err)
	}
	return snapshot, nil
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// StatusUseCase appends status events to the audit trail and serves the
// ordered per-document history.
type StatusUseCase struct {
	log  ports.StatusLogStore
	docs ports.DocumentStore
}

func NewStatusUseCase(log ports.StatusLogStore, docs ports.DocumentStore) *StatusUseCase {
	return &StatusUseCase{
		log:  log,
		docs: docs,
	}
}

// Handle appends one row per message. The store keys rows by
// (documentId, timestamp), so a redelivered message lands on the same row
// instead of duplicating it.
func (uc *StatusUseCase) Handle(ctx context.Context, payload []byte) error {
	var msg domain.StatusEventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.WrapError(domain.ErrValidation, "decode status event", err)
	}
	if msg.DocumentID == "" {
		return domain.WrapError(domain.ErrValidation, "decode status event", errors.New("documentId is required"))
	}

	event := domain.StatusEvent{
		DocumentID: msg.DocumentID,
		Timestamp:  msg.Timestamp,
		Status:     msg.Status,
		Message:    msg.Message,
	}
	if err := uc.log.Append(ctx, event); err != nil {
		return fmt.Errorf("append status event: %w", err)
	}
	return nil
}

// History returns the document's events sorted ascending by timestamp. The
// store's native retrieval order is not trusted.
func (uc *StatusUseCase) History(ctx context.Context, claims domain.TokenClaims, documentID string) ([]domain.StatusEvent, error) {
	if documentID == "" {
		return nil, domain.WrapError(domain.ErrValidation, "status history", errors.New("document id is required"))
	}

	doc, err := uc.docs.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.UserID != claims.UserID {
		return nil, domain.WrapError(domain.ErrAuthorization, "status history", errors.New("document belongs to another user"))
	}

	events, err := uc.log.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list status events: %w", err)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Timestamp < events[j].Timestamp
	})
	return events, nil
}

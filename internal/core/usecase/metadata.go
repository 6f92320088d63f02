package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// MetadataUseCase merges derived metadata into the document record and
// advances it to extraction_completed. The merge is non-destructive and the
// status transition monotonic, so redelivered messages converge.
type MetadataUseCase struct {
	docs  ports.DocumentStore
	queue ports.MessageQueue
}

func NewMetadataUseCase(docs ports.DocumentStore, classificationQueue ports.MessageQueue) *MetadataUseCase {
	return &MetadataUseCase{
		docs:  docs,
		queue: classificationQueue,
	}
}

func (uc *MetadataUseCase) Handle(ctx context.Context, payload []byte) error {
	var msg domain.MetadataMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.WrapError(domain.ErrValidation, "decode metadata message", err)
	}
	if msg.DocumentID == "" {
		return domain.WrapError(domain.ErrValidation, "decode metadata message", errors.New("documentId is required"))
	}

	doc, err := uc.docs.Get(ctx, msg.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", msg.DocumentID, err)
	}

	now := time.Now().UTC()
	doc.MergeMetadata(domain.Metadata{
		Title:        msg.Title,
		Summary:      msg.Summary,
		DocumentType: msg.DocumentType,
		Keywords:     msg.Keywords,
	}, now)
	doc.AdvanceStatus(domain.StatusExtractionCompleted, now)

	if err := uc.docs.Put(ctx, doc); err != nil {
		return fmt.Errorf("store merged document %s: %w", msg.DocumentID, err)
	}

	next, err := json.Marshal(domain.ClassificationMessage{DocumentID: msg.DocumentID})
	if err != nil {
		return fmt.Errorf("marshal classification message: %w", err)
	}
	if err := uc.queue.Publish(ctx, next); err != nil {
		return fmt.Errorf("enqueue classification: %w", err)
	}
	return nil
}

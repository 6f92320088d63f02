package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

const fallbackSummaryChars = 400

// ExtractionUseCase consumes extraction-queue messages. It always produces
// exactly one metadata message per input: extraction and provider failures
// degrade to deterministic local fallbacks, they never abort the pipeline.
type ExtractionUseCase struct {
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	provider  ports.MetadataProvider
	queue     ports.MessageQueue

	excerptMaxChars int
}

func NewExtractionUseCase(
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	provider ports.MetadataProvider,
	metadataQueue ports.MessageQueue,
	excerptMaxChars int,
) *ExtractionUseCase {
	if excerptMaxChars <= 0 {
		excerptMaxChars = 6000
	}
	return &ExtractionUseCase{
		storage:         storage,
		extractor:       extractor,
		provider:        provider,
		queue:           metadataQueue,
		excerptMaxChars: excerptMaxChars,
	}
}

func (uc *ExtractionUseCase) Handle(ctx context.Context, payload []byte) error {
	var msg domain.ExtractionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.WrapError(domain.ErrValidation, "decode extraction message", err)
	}
	if msg.DocumentID == "" || msg.Key == "" {
		return domain.WrapError(domain.ErrValidation, "decode extraction message", errors.New("documentId and key are required"))
	}

	reader, err := uc.storage.Open(ctx, msg.Key)
	if err != nil {
		return fmt.Errorf("open stored object %s: %w", msg.Key, err)
	}
	raw, err := io.ReadAll(reader)
	closeErr := reader.Close()
	if err != nil {
		return fmt.Errorf("read stored object %s: %w", msg.Key, err)
	}
	if closeErr != nil {
		return fmt.Errorf("close stored object %s: %w", msg.Key, closeErr)
	}

	excerpt := uc.extractor.Extract(msg.Filename, raw)
	if len(excerpt) > uc.excerptMaxChars {
		excerpt = excerpt[:uc.excerptMaxChars]
	}

	metadata, err := uc.provider.Derive(ctx, excerpt, msg.Filename)
	if err != nil {
		// Single attempt, no retry: the provider is best-effort.
		slog.Warn("metadata provider unavailable, using local fallback",
			"document_id", msg.DocumentID, "error", err)
		metadata = fallbackMetadata(excerpt, msg.Filename)
	}
	metadata = normalizeMetadata(metadata, excerpt, msg.Filename)

	out := domain.MetadataMessage{
		DocumentID:       msg.DocumentID,
		Title:            metadata.Title,
		Summary:          metadata.Summary,
		DocumentType:     metadata.DocumentType,
		Keywords:         metadata.Keywords,
		ExtractionStatus: "completed",
	}
	body, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("marshal metadata message: %w", err)
	}
	if err := uc.queue.Publish(ctx, body); err != nil {
		return fmt.Errorf("enqueue metadata: %w", err)
	}
	return nil
}

// fallbackMetadata is the deterministic local substitute for the provider:
// title from the filename stem, a naive summary from the excerpt, document
// type from the extension, no keywords.
func fallbackMetadata(excerpt, filename string) domain.Metadata {
	summary := excerpt
	if len(summary) > fallbackSummaryChars {
		summary = summary[:fallbackSummaryChars]
	}
	if summary == "" {
		summary = filename
	}
	return domain.Metadata{
		Title:        domain.FilenameStem(filename),
		Summary:      summary,
		DocumentType: domain.FileExtension(filename),
		Keywords:     []string{},
	}
}

// normalizeMetadata backfills fields the provider left empty so the metadata
// stage always receives a complete message.
func normalizeMetadata(m domain.Metadata, excerpt, filename string) domain.Metadata {
	fb := fallbackMetadata(excerpt, filename)
	if m.Title == "" {
		m.Title = fb.Title
	}
	if m.Summary == "" {
		m.Summary = fb.Summary
	}
	if m.DocumentType == "" {
		m.DocumentType = fb.DocumentType
	}
	if m.Keywords == nil {
		m.Keywords = []string{}
	}
	return m
}

package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// UploadUseCase is the only write path that creates a document record.
// Everything downstream of it only merges updates in.
type UploadUseCase struct {
	docs    ports.DocumentStore
	storage ports.ObjectStorage
	queue   ports.MessageQueue
}

func NewUploadUseCase(docs ports.DocumentStore, storage ports.ObjectStorage, extractionQueue ports.MessageQueue) *UploadUseCase {
	return &UploadUseCase{
		docs:    docs,
		storage: storage,
		queue:   extractionQueue,
	}
}

func (uc *UploadUseCase) Upload(ctx context.Context, claims domain.TokenClaims, filename string, body io.Reader) (*domain.Document, error) {
	if filename == "" {
		filename = "document.pdf"
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read upload body: %w", err)
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrValidation, "upload", errors.New("file payload is empty"))
	}

	documentID := uuid.NewString()
	key := fmt.Sprintf("uploads/%s/%s", documentID, filepath.Base(filename))
	now := time.Now().UTC()

	if err := uc.storage.Save(ctx, key, bytes.NewReader(raw), int64(len(raw)), contentTypeFor(filename)); err != nil {
		return nil, fmt.Errorf("store object: %w", err)
	}

	doc := &domain.Document{
		DocumentID:  documentID,
		UserID:      claims.UserID,
		Filename:    filename,
		FileType:    domain.FileExtension(filename),
		ContentType: contentTypeFor(filename),
		StorageKey:  key,
		Status:      domain.StatusPendingExtraction,
		UploadedAt:  now,
		UpdatedAt:   now,
	}
	if err := uc.docs.Put(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document record: %w", err)
	}

	msg := domain.ExtractionMessage{
		DocumentID: documentID,
		Key:        key,
		UploadedAt: now.Format(time.RFC3339),
		Filename:   filename,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction message: %w", err)
	}
	if err := uc.queue.Publish(ctx, payload); err != nil {
		return nil, fmt.Errorf("enqueue extraction: %w", err)
	}

	return doc, nil
}

func contentTypeFor(filename string) string {
	if ct := mime.TypeByExtension(filepath.Ext(filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

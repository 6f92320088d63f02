package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kpetrov/docflow/internal/core/domain"
)

func TestUploadCreatesRecordAndEnqueues(t *testing.T) {
	docs := newFakeDocumentStore()
	storage := newFakeStorage()
	queue := &fakeQueue{}
	uc := NewUploadUseCase(docs, storage, queue)

	claims := domain.TokenClaims{UserID: "user-1", Username: "alice"}
	doc, err := uc.Upload(context.Background(), claims, "report.pdf", strings.NewReader("%PDF-1.4 fake"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if doc.Status != domain.StatusPendingExtraction {
		t.Fatalf("expected status pending_extraction, got %s", doc.Status)
	}
	if doc.UserID != "user-1" {
		t.Fatalf("expected owner user-1, got %s", doc.UserID)
	}
	if doc.FileType != "pdf" {
		t.Fatalf("expected file type pdf, got %s", doc.FileType)
	}
	if !strings.HasPrefix(doc.StorageKey, "uploads/"+doc.DocumentID+"/") {
		t.Fatalf("unexpected storage key %s", doc.StorageKey)
	}
	if _, ok := storage.objects[doc.StorageKey]; !ok {
		t.Fatalf("object not stored under %s", doc.StorageKey)
	}
	if _, ok := docs.docs[doc.DocumentID]; !ok {
		t.Fatalf("document record not persisted")
	}

	if len(queue.published) != 1 {
		t.Fatalf("expected 1 extraction message, got %d", len(queue.published))
	}
	var msg domain.ExtractionMessage
	if err := json.Unmarshal(queue.published[0], &msg); err != nil {
		t.Fatalf("unmarshal extraction message: %v", err)
	}
	if msg.DocumentID != doc.DocumentID || msg.Key != doc.StorageKey {
		t.Fatalf("extraction message mismatch: %+v", msg)
	}
}

func TestUploadEmptyPayloadRejected(t *testing.T) {
	uc := NewUploadUseCase(newFakeDocumentStore(), newFakeStorage(), &fakeQueue{})

	_, err := uc.Upload(context.Background(), domain.TokenClaims{UserID: "user-1"}, "empty.txt", strings.NewReader(""))
	if !domain.IsKind(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadDefaultsFilename(t *testing.T) {
	docs := newFakeDocumentStore()
	uc := NewUploadUseCase(docs, newFakeStorage(), &fakeQueue{})

	doc, err := uc.Upload(context.Background(), domain.TokenClaims{UserID: "user-1"}, "", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.Filename != "document.pdf" {
		t.Fatalf("expected default filename document.pdf, got %s", doc.Filename)
	}
}

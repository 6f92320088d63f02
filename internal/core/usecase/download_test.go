package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
)

func TestDownloadGrantsPresignedURL(t *testing.T) {
	docs := newFakeDocumentStore()
	seedDocument(t, docs, domain.Document{
		DocumentID: "doc-1",
		UserID:     "user-1",
		Filename:   "report.pdf",
		StorageKey: "uploads/doc-1/report.pdf",
	})
	storage := newFakeStorage()
	uc := NewDownloadUseCase(docs, storage, 15*time.Minute)

	grant, err := uc.Download(context.Background(), domain.TokenClaims{UserID: "user-1"}, "doc-1")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	if !strings.Contains(grant.URL, "uploads/doc-1/report.pdf") {
		t.Fatalf("grant url not derived from storage key: %s", grant.URL)
	}
	if grant.Filename != "report.pdf" {
		t.Fatalf("expected original filename, got %s", grant.Filename)
	}
	if grant.ExpiresIn != 900 {
		t.Fatalf("expected expiresIn 900 seconds, got %d", grant.ExpiresIn)
	}
	if storage.presignTTL != 15*time.Minute {
		t.Fatalf("presign called with ttl %v", storage.presignTTL)
	}
}

func TestDownloadOwnershipEnforced(t *testing.T) {
	docs := newFakeDocumentStore()
	seedDocument(t, docs, domain.Document{DocumentID: "doc-1", UserID: "user-1", StorageKey: "k"})
	uc := NewDownloadUseCase(docs, newFakeStorage(), time.Minute)

	_, err := uc.Download(context.Background(), domain.TokenClaims{UserID: "intruder"}, "doc-1")
	if !domain.IsKind(err, domain.ErrAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestDownloadUnknownDocument(t *testing.T) {
	uc := NewDownloadUseCase(newFakeDocumentStore(), newFakeStorage(), time.Minute)

	_, err := uc.Download(context.Background(), domain.TokenClaims{UserID: "user-1"}, "ghost")
	if !domain.IsKind(err, domain.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

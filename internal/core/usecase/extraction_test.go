package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/kpetrov/docflow/internal/core/domain"
)

func extractionPayload(t *testing.T, documentID, key, filename string) []byte {
	t.Helper()
	payload, err := json.Marshal(domain.ExtractionMessage{
		DocumentID: documentID,
		Key:        key,
		Filename:   filename,
	})
	if err != nil {
		t.Fatalf("marshal extraction message: %v", err)
	}
	return payload
}

func TestExtractionPublishesMetadata(t *testing.T) {
	storage := newFakeStorage()
	storage.objects["uploads/doc-1/report.pdf"] = []byte("raw bytes")
	provider := &fakeProvider{metadata: domain.Metadata{
		Title:        "Quarterly Report",
		Summary:      "A summary.",
		DocumentType: "report",
		Keywords:     []string{"finance"},
	}}
	queue := &fakeQueue{}
	uc := NewExtractionUseCase(storage, &fakeExtractor{text: "extracted text"}, provider, queue, 0)

	err := uc.Handle(context.Background(), extractionPayload(t, "doc-1", "uploads/doc-1/report.pdf", "report.pdf"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if len(queue.published) != 1 {
		t.Fatalf("expected 1 metadata message, got %d", len(queue.published))
	}
	var msg domain.MetadataMessage
	if err := json.Unmarshal(queue.published[0], &msg); err != nil {
		t.Fatalf("unmarshal metadata message: %v", err)
	}
	if msg.Title != "Quarterly Report" || msg.ExtractionStatus != "completed" {
		t.Fatalf("unexpected metadata message: %+v", msg)
	}
}

func TestExtractionProviderFailureFallsBack(t *testing.T) {
	storage := newFakeStorage()
	storage.objects["uploads/doc-2/resume.pdf"] = []byte("raw bytes")
	provider := &fakeProvider{err: errors.New("provider down")}
	queue := &fakeQueue{}
	uc := NewExtractionUseCase(storage, &fakeExtractor{text: "some extracted text"}, provider, queue, 0)

	err := uc.Handle(context.Background(), extractionPayload(t, "doc-2", "uploads/doc-2/resume.pdf", "resume.pdf"))
	if err != nil {
		t.Fatalf("Handle() error = %v, provider failure must not abort the stage", err)
	}
	if provider.calls != 1 {
		t.Fatalf("expected exactly 1 provider attempt, got %d", provider.calls)
	}

	var msg domain.MetadataMessage
	if err := json.Unmarshal(queue.published[0], &msg); err != nil {
		t.Fatalf("unmarshal metadata message: %v", err)
	}
	if msg.Title != "resume" {
		t.Fatalf("expected fallback title from filename stem, got %q", msg.Title)
	}
	if msg.DocumentType != "pdf" {
		t.Fatalf("expected fallback document type pdf, got %q", msg.DocumentType)
	}
	if msg.Summary != "some extracted text" {
		t.Fatalf("expected fallback summary from excerpt, got %q", msg.Summary)
	}
	if msg.Keywords == nil || len(msg.Keywords) != 0 {
		t.Fatalf("expected empty keyword list, got %v", msg.Keywords)
	}
}

func TestExtractionCapsExcerpt(t *testing.T) {
	storage := newFakeStorage()
	storage.objects["uploads/doc-3/big.txt"] = []byte("ignored")
	provider := &fakeProvider{metadata: domain.Metadata{Title: "t", Summary: "s", DocumentType: "txt"}}
	uc := NewExtractionUseCase(storage, &fakeExtractor{text: strings.Repeat("a", 10000)}, provider, &fakeQueue{}, 6000)

	err := uc.Handle(context.Background(), extractionPayload(t, "doc-3", "uploads/doc-3/big.txt", "big.txt"))
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(provider.excerpt) != 6000 {
		t.Fatalf("expected excerpt capped at 6000 chars, got %d", len(provider.excerpt))
	}
}

func TestExtractionRejectsMalformedMessage(t *testing.T) {
	uc := NewExtractionUseCase(newFakeStorage(), &fakeExtractor{}, &fakeProvider{}, &fakeQueue{}, 0)

	cases := []struct {
		name    string
		payload []byte
	}{
		{"invalid json", []byte("{not json")},
		{"missing fields", []byte(`{"documentId":""}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := uc.Handle(context.Background(), tc.payload)
			if !domain.IsKind(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestExtractionMissingObjectIsRetryable(t *testing.T) {
	queue := &fakeQueue{}
	uc := NewExtractionUseCase(newFakeStorage(), &fakeExtractor{}, &fakeProvider{}, queue, 0)

	err := uc.Handle(context.Background(), extractionPayload(t, "doc-4", "uploads/doc-4/missing.pdf", "missing.pdf"))
	if err == nil {
		t.Fatalf("expected error when stored object is missing")
	}
	if len(queue.published) != 0 {
		t.Fatalf("no metadata message should be published on storage failure")
	}
}

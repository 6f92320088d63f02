package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
)

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestDeriveSendsExcerptAndParsesResult(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key-1" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(completionResponse(`{"title":"Report","summary":"Sum","documentType":"report","keywords":["a"]}`)))
	}))
	defer server.Close()

	provider := NewMetadataProvider(New(server.URL, "key-1", "gpt-4o-mini", time.Second))
	metadata, err := provider.Derive(context.Background(), "excerpt text", "report.pdf")
	if err != nil {
		t.Fatalf("Derive() error = %v", err)
	}
	if metadata.Title != "Report" || metadata.DocumentType != "report" {
		t.Fatalf("unexpected metadata: %+v", metadata)
	}
	if captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", captured.ResponseFormat.Type)
	}
	if len(captured.Messages) != 2 || !strings.Contains(captured.Messages[1].Content, "excerpt text") {
		t.Fatalf("excerpt not sent to provider: %+v", captured.Messages)
	}
}

func TestDeriveWithoutAPIKeyIsUpstreamError(t *testing.T) {
	provider := NewMetadataProvider(New("http://localhost:1", "", "gpt-4o-mini", time.Second))

	_, err := provider.Derive(context.Background(), "excerpt", "a.pdf")
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream without api key, got %v", err)
	}
}

func TestDeriveUpstreamFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	provider := NewMetadataProvider(New(server.URL, "key-1", "gpt-4o-mini", time.Second))
	_, err := provider.Derive(context.Background(), "excerpt", "a.pdf")
	if !domain.IsKind(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected response body in error, got %v", err)
	}
}

func TestClassifyParsesFencedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionResponse("Here you go:\n```json\n{\"category\":\"invoice\",\"subcategory\":\"utility_bill\"}\n```")))
	}))
	defer server.Close()

	classifier := NewClassifier(New(server.URL, "key-1", "gpt-4o-mini", time.Second), []string{"invoice", "letter"})
	classification, err := classifier.Classify(context.Background(), &domain.Document{Title: "Bill"})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if classification.Category != "invoice" || classification.Subcategory != "utility_bill" {
		t.Fatalf("unexpected classification: %+v", classification)
	}
}

package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// allowedCategories is the closed vocabulary the classifier is constrained
// to. Anything outside it is coerced to the catch-all.
var allowedCategories = map[string]struct{}{
	"resume": {}, "report": {}, "article": {}, "invoice": {}, "contract": {},
	"letter": {}, "certificate": {}, "legal": {}, "presentation": {}, "manual": {}, "form": {},
}

const defaultCategory = "letter"

// CategoryVocabulary lists the allowed categories for classifier prompts.
func CategoryVocabulary() []string {
	return []string{
		"resume", "report", "article", "invoice", "contract", "letter",
		"certificate", "legal", "presentation", "manual", "form",
	}
}

// ClassificationUseCase is the terminal pipeline stage: it writes the
// category fields, advances the document to completed, and fans one input
// out into a status event and a notification.
type ClassificationUseCase struct {
	docs       ports.DocumentStore
	classifier ports.Classifier

	statusQueue       ports.MessageQueue
	notificationQueue ports.MessageQueue
}

func NewClassificationUseCase(
	docs ports.DocumentStore,
	classifier ports.Classifier,
	statusQueue ports.MessageQueue,
	notificationQueue ports.MessageQueue,
) *ClassificationUseCase {
	return &ClassificationUseCase{
		docs:              docs,
		classifier:        classifier,
		statusQueue:       statusQueue,
		notificationQueue: notificationQueue,
	}
}

func (uc *ClassificationUseCase) Handle(ctx context.Context, payload []byte) error {
	var msg domain.ClassificationMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.WrapError(domain.ErrValidation, "decode classification message", err)
	}
	if msg.DocumentID == "" {
		return domain.WrapError(domain.ErrValidation, "decode classification message", errors.New("documentId is required"))
	}

	doc, err := uc.docs.Get(ctx, msg.DocumentID)
	if err != nil {
		return fmt.Errorf("load document %s: %w", msg.DocumentID, err)
	}

	classification, err := uc.classifier.Classify(ctx, doc)
	if err != nil {
		slog.Warn("classifier unavailable, using keyword fallback",
			"document_id", msg.DocumentID, "error", err)
		classification = fallbackClassification(doc)
	}
	classification = coerceToVocabulary(classification)

	now := time.Now().UTC()
	doc.ApplyClassification(classification, now)
	doc.AdvanceStatus(domain.StatusCompleted, now)

	if err := uc.docs.Put(ctx, doc); err != nil {
		return fmt.Errorf("store classified document %s: %w", msg.DocumentID, err)
	}

	event := domain.StatusEventMessage{
		DocumentID: msg.DocumentID,
		Status:     "classification_completed",
		Message:    fmt.Sprintf("Classified as %s", classification.Category),
		Timestamp:  now.Unix(),
	}
	eventBody, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal status event: %w", err)
	}
	if err := uc.statusQueue.Publish(ctx, eventBody); err != nil {
		return fmt.Errorf("enqueue status event: %w", err)
	}

	notification, err := json.Marshal(domain.NotificationMessage{
		DocumentID: msg.DocumentID,
		Status:     string(domain.StatusCompleted),
	})
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := uc.notificationQueue.Publish(ctx, notification); err != nil {
		return fmt.Errorf("enqueue notification: %w", err)
	}
	return nil
}

// fallbackClassification matches keywords in the title when the provider is
// unavailable. The catch-all keeps every document classified.
func fallbackClassification(doc *domain.Document) domain.Classification {
	title := strings.ToLower(doc.Title)
	switch {
	case strings.Contains(title, "resume"), strings.Contains(title, "cv"):
		return domain.Classification{Category: "resume", Subcategory: "resume"}
	case strings.Contains(title, "invoice"):
		return domain.Classification{Category: "invoice", Subcategory: "invoice"}
	default:
		return domain.Classification{Category: defaultCategory, Subcategory: defaultCategory}
	}
}

func coerceToVocabulary(c domain.Classification) domain.Classification {
	c.Category = strings.ToLower(strings.TrimSpace(c.Category))
	if _, ok := allowedCategories[c.Category]; !ok {
		c.Category = defaultCategory
	}
	if strings.TrimSpace(c.Subcategory) == "" {
		c.Subcategory = c.Category
	}
	return c
}

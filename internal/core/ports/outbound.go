package ports

import (
	"context"
	"io"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// DocumentStore holds the evolving document record keyed by document id.
// Put overwrites the whole record; stages merge at the application layer
// before writing back.
type DocumentStore interface {
	Put(ctx context.Context, doc *domain.Document) error
	Get(ctx context.Context, documentID string) (*domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
}

// StatusLogStore is the append-only audit trail keyed by (documentId, timestamp).
// Rows are never updated or deleted; retrieval order is unspecified.
type StatusLogStore interface {
	Append(ctx context.Context, event domain.StatusEvent) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.StatusEvent, error)
}

// UserStore holds credentials keyed by username.
type UserStore interface {
	Put(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

// AnalyticsStore persists daily pipeline aggregates.
type AnalyticsStore interface {
	SaveSnapshot(ctx context.Context, snapshot domain.AnalyticsSnapshot) error
}

// ObjectStorage stores uploaded file bytes and issues time-limited
// capability URLs for retrieval.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader, size int64, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// MessageQueue is one named at-least-once delivery channel. A handler error
// leaves the message eligible for redelivery, so handlers must be idempotent.
type MessageQueue interface {
	Publish(ctx context.Context, payload []byte) error
	Subscribe(ctx context.Context, handler func(context.Context, []byte) error) error
}

// TopicPublisher fans a notification out to all topic subscribers.
type TopicPublisher interface {
	Publish(ctx context.Context, payload []byte, subject string) error
}

// TextExtractor derives a plain-text excerpt from raw file bytes. It never
// fails: unsupported or corrupt input degrades to a best-effort decode.
type TextExtractor interface {
	Extract(filename string, data []byte) string
}

// MetadataProvider is the external AI call deriving document metadata from
// an excerpt. Failures are expected and absorbed by the caller's fallback.
type MetadataProvider interface {
	Derive(ctx context.Context, excerpt, filename string) (domain.Metadata, error)
}

// Classifier is the external AI call categorizing a document.
type Classifier interface {
	Classify(ctx context.Context, doc *domain.Document) (domain.Classification, error)
}

// TokenManager mints and verifies stateless bearer tokens.
type TokenManager interface {
	Issue(userID, username string) (string, domain.TokenClaims, error)
	Verify(token string) (domain.TokenClaims, error)
}

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) (bool, error)
}

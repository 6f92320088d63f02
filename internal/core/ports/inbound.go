package ports

import (
	"context"
	"io"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// AuthService is the inbound contract for registration and login.
type AuthService interface {
	Register(ctx context.Context, username, password, email string) (*domain.AuthResult, error)
	Login(ctx context.Context, username, password string) (*domain.AuthResult, error)
}

// DocumentUploader is the inbound contract for the upload stage.
type DocumentUploader interface {
	Upload(ctx context.Context, claims domain.TokenClaims, filename string, body io.Reader) (*domain.Document, error)
}

// DocumentSearcher is the inbound contract for the search query service.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.Document, error)
}

// StatusReader returns the ordered status history of an owned document.
type StatusReader interface {
	History(ctx context.Context, claims domain.TokenClaims, documentID string) ([]domain.StatusEvent, error)
}

// DownloadService issues a time-limited retrieval URL for an owned document.
type DownloadService interface {
	Download(ctx context.Context, claims domain.TokenClaims, documentID string) (*domain.DownloadGrant, error)
}

// StageHandler consumes one raw queue message. Returning an error leaves the
// message eligible for redelivery.
type StageHandler interface {
	Handle(ctx context.Context, payload []byte) error
}

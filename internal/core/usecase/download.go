package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// DownloadUseCase returns a time-limited capability URL instead of streaming
// bytes through the service.
type DownloadUseCase struct {
	docs    ports.DocumentStore
	storage ports.ObjectStorage
	ttl     time.Duration
}

func NewDownloadUseCase(docs ports.DocumentStore, storage ports.ObjectStorage, ttl time.Duration) *DownloadUseCase {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DownloadUseCase{
		docs:    docs,
		storage: storage,
		ttl:     ttl,
	}
}

func (uc *DownloadUseCase) Download(ctx context.Context, claims domain.TokenClaims, documentID string) (*domain.DownloadGrant, error) {
	if documentID == "" {
		return nil, domain.WrapError(domain.ErrValidation, "download", errors.New("document id is required"))
	}

	doc, err := uc.docs.Get(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", documentID, err)
	}
	if doc.UserID != claims.UserID {
		return nil, domain.WrapError(domain.ErrAuthorization, "download", errors.New("document belongs to another user"))
	}

	url, err := uc.storage.PresignGet(ctx, doc.StorageKey, uc.ttl)
	if err != nil {
		return nil, fmt.Errorf("presign object %s: %w", doc.StorageKey, err)
	}

	return &domain.DownloadGrant{
		DocumentID: documentID,
		Filename:   doc.Filename,
		URL:        url,
		ExpiresIn:  int(uc.ttl.Seconds()),
	}, nil
}

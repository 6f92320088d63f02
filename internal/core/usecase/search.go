package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

// SearchUseCase performs a full scan of the document store. O(total
// documents) per call: no secondary index exists in this design, which is an
// accepted scaling limitation rather than an oversight.
type SearchUseCase struct {
	docs ports.DocumentStore

	defaultLimit int
	maxLimit     int
}

func NewSearchUseCase(docs ports.DocumentStore, defaultLimit, maxLimit int) *SearchUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	if maxLimit <= 0 {
		maxLimit = 200
	}
	return &SearchUseCase{
		docs:         docs,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

func (uc *SearchUseCase) Search(ctx context.Context, query string, filter domain.SearchFilter, limit int) ([]domain.Document, error) {
	if limit <= 0 {
		limit = uc.defaultLimit
	}
	if limit > uc.maxLimit {
		limit = uc.maxLimit
	}
	query = strings.ToLower(strings.TrimSpace(query))

	docs, err := uc.docs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	matched := make([]domain.Document, 0, len(docs))
	for _, doc := range docs {
		if !matchesQuery(&doc, query) {
			continue
		}
		if !matchesFilter(&doc, filter) {
			continue
		}
		matched = append(matched, doc)
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].LastChangedAt().After(matched[j].LastChangedAt())
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesQuery(doc *domain.Document, query string) bool {
	if query == "" {
		return true
	}
	haystack := strings.ToLower(strings.Join([]string{
		doc.Title, doc.Summary, doc.Filename, doc.DocumentType,
	}, " "))
	return strings.Contains(haystack, query)
}

func matchesFilter(doc *domain.Document, filter domain.SearchFilter) bool {
	if filter.Category != "" && !strings.EqualFold(doc.Category, filter.Category) {
		return false
	}
	if filter.FileType != "" && !strings.EqualFold(effectiveFileType(doc), filter.FileType) {
		return false
	}
	if filter.Status != "" && !strings.EqualFold(effectiveStatus(doc), filter.Status) {
		return false
	}
	return true
}

func effectiveFileType(doc *domain.Document) string {
	if doc.FileType != "" && doc.FileType != "unknown" {
		return doc.FileType
	}
	if strings.Contains(doc.Filename, ".") {
		return domain.FileExtension(doc.Filename)
	}
	return doc.FileType
}

// effectiveStatus falls through the status fields in ownership order so a
// filter like status=completed matches whichever stage reported it.
func effectiveStatus(doc *domain.Document) string {
	if doc.Status != "" {
		return string(doc.Status)
	}
	if doc.ClassificationStatus != "" {
		return doc.ClassificationStatus
	}
	return doc.ExtractionStatus
}

package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// DocumentStore persists the document record. Put has full-overwrite
// semantics at the storage layer; stages merge before writing back.
type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentColumns = `document_id, user_id, filename, file_type, content_type, storage_key, status,
	title, summary, document_type, keywords, category, subcategory, classification_status, extraction_status,
	uploaded_at, updated_at`

func (s *DocumentStore) Put(ctx context.Context, doc *domain.Document) error {
	keywords := doc.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("marshal keywords: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO documents (`+documentColumns+`)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)
ON CONFLICT (document_id) DO UPDATE SET
	user_id = EXCLUDED.user_id,
	filename = EXCLUDED.filename,
	file_type = EXCLUDED.file_type,
	content_type = EXCLUDED.content_type,
	storage_key = EXCLUDED.storage_key,
	status = EXCLUDED.status,
	title = EXCLUDED.title,
	summary = EXCLUDED.summary,
	document_type = EXCLUDED.document_type,
	keywords = EXCLUDED.keywords,
	category = EXCLUDED.category,
	subcategory = EXCLUDED.subcategory,
	classification_status = EXCLUDED.classification_status,
	extraction_status = EXCLUDED.extraction_status,
	uploaded_at = EXCLUDED.uploaded_at,
	updated_at = EXCLUDED.updated_at
`,
		doc.DocumentID, doc.UserID, doc.Filename, doc.FileType, doc.ContentType, doc.StorageKey, string(doc.Status),
		doc.Title, doc.Summary, doc.DocumentType, keywordsJSON, doc.Category, doc.Subcategory,
		doc.ClassificationStatus, doc.ExtractionStatus, doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (s *DocumentStore) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT `+documentColumns+`
FROM documents
WHERE document_id = $1
`, documentID)

	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("document %s", documentID))
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return doc, nil
}

func (s *DocumentStore) List(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT `+documentColumns+`
FROM documents
`)
	if err != nil {
		return nil, fmt.Errorf("scan documents table: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document rows: %w", err)
	}
	return docs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var keywordsRaw []byte

	err := row.Scan(
		&doc.DocumentID, &doc.UserID, &doc.Filename, &doc.FileType, &doc.ContentType, &doc.StorageKey, &status,
		&doc.Title, &doc.Summary, &doc.DocumentType, &keywordsRaw, &doc.Category, &doc.Subcategory,
		&doc.ClassificationStatus, &doc.ExtractionStatus, &doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(keywordsRaw, &doc.Keywords); err != nil {
		return nil, fmt.Errorf("unmarshal keywords: %w", err)
	}
	doc.Status = domain.DocumentStatus(status)
	return &doc, nil
}

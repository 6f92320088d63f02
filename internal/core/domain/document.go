package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusPendingExtraction   DocumentStatus = "pending_extraction"
	StatusExtractionCompleted DocumentStatus = "extraction_completed"
	StatusCompleted           DocumentStatus = "completed"
)

// statusRank orders the pipeline states. Unknown states rank below
// pending_extraction so a malformed value never blocks progress.
func statusRank(s DocumentStatus) int {
	switch s {
	case StatusPendingExtraction:
		return 1
	case StatusExtractionCompleted:
		return 2
	case StatusCompleted:
		return 3
	default:
		return 0
	}
}

// Document is the per-upload record. It is created once by the upload stage
// and mutated only by merging: a later stage must never erase fields written
// by an earlier one.
type Document struct {
	DocumentID  string         `json:"documentId"`
	UserID      string         `json:"userId"`
	Filename    string         `json:"filename"`
	FileType    string         `json:"fileType"`
	ContentType string         `json:"contentType"`
	StorageKey  string         `json:"storageKey"`
	Status      DocumentStatus `json:"status"`

	Title        string   `json:"title,omitempty"`
	Summary      string   `json:"summary,omitempty"`
	DocumentType string   `json:"documentType,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`

	Category             string `json:"category,omitempty"`
	Subcategory          string `json:"subcategory,omitempty"`
	ClassificationStatus string `json:"classificationStatus,omitempty"`
	ExtractionStatus     string `json:"extractionStatus,omitempty"`

	UploadedAt time.Time `json:"uploadedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Metadata is the field set owned by the metadata stage.
type Metadata struct {
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	DocumentType string   `json:"documentType"`
	Keywords     []string `json:"keywords"`
}

// Classification is the field set owned by the classification stage.
type Classification struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// AdvanceStatus moves the document status forward and reports whether it
// changed. The status is monotonic: redelivered messages can replay an
// earlier stage, so a regression is ignored rather than written.
func (d *Document) AdvanceStatus(to DocumentStatus, now time.Time) bool {
	if statusRank(to) <= statusRank(d.Status) {
		return false
	}
	d.Status = to
	d.UpdatedAt = now
	return true
}

// MergeMetadata fills metadata fields that are still absent. Existing fields
// win: under at-least-once delivery the same metadata message may arrive
// after classification already ran, and must not clobber anything.
func (d *Document) MergeMetadata(m Metadata, now time.Time) {
	if d.Title == "" {
		d.Title = m.Title
	}
	if d.Summary == "" {
		d.Summary = m.Summary
	}
	if d.DocumentType == "" {
		d.DocumentType = m.DocumentType
	}
	if len(d.Keywords) == 0 && len(m.Keywords) > 0 {
		d.Keywords = m.Keywords
	}
	if d.FileType == "" {
		d.FileType = FileExtension(d.Filename)
	}
	d.ExtractionStatus = "completed"
	d.UpdatedAt = now
}

// ApplyClassification writes the classification-owned fields.
func (d *Document) ApplyClassification(c Classification, now time.Time) {
	d.Category = c.Category
	d.Subcategory = c.Subcategory
	d.ClassificationStatus = "completed"
	d.UpdatedAt = now
}

// LastChangedAt is the sort key for search results.
func (d *Document) LastChangedAt() time.Time {
	if !d.UpdatedAt.IsZero() {
		return d.UpdatedAt
	}
	return d.UploadedAt
}

// FileExtension returns the lowercased extension without the dot, or
// "unknown" when the filename has none.
func FileExtension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "unknown"
	}
	return strings.ToLower(ext)
}

// FilenameStem returns the filename without its extension, used as the
// fallback document title.
func FilenameStem(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// StatusEvent is one row of the append-only per-document audit trail.
// Events are never mutated or deleted; readers sort by Timestamp because
// the store does not guarantee retrieval order.
type StatusEvent struct {
	DocumentID string `json:"documentId"`
	Timestamp  int64  `json:"timestamp"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

// AnalyticsSnapshot is the daily aggregate written by the analytics job.
type AnalyticsSnapshot struct {
	Date               string `json:"date"`
	TotalDocuments     int    `json:"totalDocuments"`
	CompletedDocuments int    `json:"completedDocuments"`
}

package domain

import (
	"testing"
	"time"
)

func TestAdvanceStatusMonotonic(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		from    DocumentStatus
		to      DocumentStatus
		changed bool
	}{
		{"forward one step", StatusPendingExtraction, StatusExtractionCompleted, true},
		{"forward two steps", StatusPendingExtraction, StatusCompleted, true},
		{"same state", StatusExtractionCompleted, StatusExtractionCompleted, false},
		{"backwards", StatusCompleted, StatusPendingExtraction, false},
		{"backwards one step", StatusCompleted, StatusExtractionCompleted, false},
		{"unknown target", StatusPendingExtraction, DocumentStatus("garbage"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Document{Status: tc.from}
			changed := doc.AdvanceStatus(tc.to, now)
			if changed != tc.changed {
				t.Fatalf("AdvanceStatus(%s -> %s) = %v, want %v", tc.from, tc.to, changed, tc.changed)
			}
			if changed && doc.Status != tc.to {
				t.Fatalf("status not updated: %s", doc.Status)
			}
			if !changed && doc.Status != tc.from {
				t.Fatalf("rejected transition still mutated status: %s", doc.Status)
			}
		})
	}
}

func TestMergeMetadataExistingFieldsWin(t *testing.T) {
	now := time.Now().UTC()
	doc := Document{
		Filename: "report.pdf",
		Title:    "Existing Title",
		Keywords: []string{"kept"},
	}

	doc.MergeMetadata(Metadata{
		Title:        "New Title",
		Summary:      "New summary",
		DocumentType: "report",
		Keywords:     []string{"dropped"},
	}, now)

	if doc.Title != "Existing Title" {
		t.Fatalf("existing title overwritten: %s", doc.Title)
	}
	if doc.Summary != "New summary" {
		t.Fatalf("empty summary not filled: %s", doc.Summary)
	}
	if len(doc.Keywords) != 1 || doc.Keywords[0] != "kept" {
		t.Fatalf("existing keywords overwritten: %v", doc.Keywords)
	}
	if doc.ExtractionStatus != "completed" {
		t.Fatalf("extraction status not set: %s", doc.ExtractionStatus)
	}
	if doc.FileType != "pdf" {
		t.Fatalf("file type not derived from filename: %s", doc.FileType)
	}
}

func TestFileExtension(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{"noext", "unknown"},
		{"", "unknown"},
	}
	for _, tc := range cases {
		if got := FileExtension(tc.filename); got != tc.want {
			t.Fatalf("FileExtension(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestFilenameStem(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"report.pdf", "report"},
		{"dir/nested.txt", "nested"},
		{"noext", "noext"},
	}
	for _, tc := range cases {
		if got := FilenameStem(tc.filename); got != tc.want {
			t.Fatalf("FilenameStem(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}

func TestLastChangedAtFallsBackToUpload(t *testing.T) {
	uploaded := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	doc := Document{UploadedAt: uploaded}
	if !doc.LastChangedAt().Equal(uploaded) {
		t.Fatalf("expected upload time, got %v", doc.LastChangedAt())
	}

	updated := uploaded.Add(time.Hour)
	doc.UpdatedAt = updated
	if !doc.LastChangedAt().Equal(updated) {
		t.Fatalf("expected updated time, got %v", doc.LastChangedAt())
	}
}

package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kpetrov/docflow/internal/core/domain"
)

// MetadataProvider derives title/summary/type/keywords from a text excerpt.
type MetadataProvider struct {
	client *Client
}

func NewMetadataProvider(client *Client) *MetadataProvider {
	return &MetadataProvider{client: client}
}

func (p *MetadataProvider) Derive(ctx context.Context, excerpt, filename string) (domain.Metadata, error) {
	prompt := "You receive plain text extracted from a user document. " +
		"Return JSON with keys: title (string), summary (string), documentType (string), keywords (array of strings). " +
		"Focus on the real content and keep summary under 120 words.\n\nTEXT:\n" + excerpt

	var result struct {
		Title        string   `json:"title"`
		Summary      string   `json:"summary"`
		DocumentType string   `json:"documentType"`
		Keywords     []string `json:"keywords"`
	}
	err := p.client.completeJSON(ctx, "derive metadata",
		"You extract metadata for document management systems.", prompt, 0.2, &result)
	if err != nil {
		return domain.Metadata{}, err
	}

	title := result.Title
	if title == "" {
		title = domain.FilenameStem(filename)
	}
	return domain.Metadata{
		Title:        title,
		Summary:      result.Summary,
		DocumentType: result.DocumentType,
		Keywords:     result.Keywords,
	}, nil
}

// Classifier categorizes a document from its metadata. The vocabulary the
// model is prompted with mirrors the closed set enforced downstream.
type Classifier struct {
	client     *Client
	categories []string
}

func NewClassifier(client *Client, categories []string) *Classifier {
	return &Classifier{
		client:     client,
		categories: categories,
	}
}

func (c *Classifier) Classify(ctx context.Context, doc *domain.Document) (domain.Classification, error) {
	meta, err := json.Marshal(map[string]any{
		"title":        doc.Title,
		"summary":      doc.Summary,
		"documentType": doc.DocumentType,
		"keywords":     doc.Keywords,
		"filename":     doc.Filename,
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal document metadata: %w", err)
	}

	prompt := "You must classify documents strictly into one of these categories:\n" +
		strings.Join(c.categories, ", ") +
		"\nReturn JSON with keys: category (from list above) and subcategory (more specific, e.g. 'cover_letter').\n" +
		"Here is the metadata:\n" + string(meta)

	var result domain.Classification
	err = c.client.completeJSON(ctx, "classify document",
		"You are a precise document classifier.", prompt, 0.1, &result)
	if err != nil {
		return domain.Classification{}, err
	}
	return result, nil
}

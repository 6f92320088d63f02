package domain

// Queue message payloads. Every payload carries the document id; each
// pipeline stage consumes exactly one message type and publishes the next.

// ExtractionMessage triggers the extraction stage for a freshly uploaded file.
type ExtractionMessage struct {
	DocumentID string `json:"documentId"`
	Key        string `json:"key"`
	UploadedAt string `json:"uploadedAt"`
	Filename   string `json:"filename"`
}

// MetadataMessage carries derived metadata from extraction to the metadata stage.
type MetadataMessage struct {
	DocumentID       string   `json:"documentId"`
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	DocumentType     string   `json:"documentType"`
	Keywords         []string `json:"keywords"`
	ExtractionStatus string   `json:"extractionStatus"`
}

// ClassificationMessage triggers the classification stage.
type ClassificationMessage struct {
	DocumentID string `json:"documentId"`
}

// StatusEventMessage appends one row to the status log.
type StatusEventMessage struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
	Timestamp  int64  `json:"timestamp"`
}

// NotificationMessage is bridged verbatim onto the pub/sub topic.
type NotificationMessage struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
}

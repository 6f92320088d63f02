package domain

// SearchFilter holds the exact-match filters of the search endpoint.
// Empty fields match everything.
type SearchFilter struct {
	Category string
	FileType string
	Status   string
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token    string `json:"token"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// DownloadGrant is a time-limited capability URL for one stored object.
type DownloadGrant struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	URL        string `json:"downloadUrl"`
	ExpiresIn  int    `json:"expiresIn"`
}

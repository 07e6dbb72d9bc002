package dto

// ExportRequest is the body of POST /export and POST /persist.
type ExportRequest struct {
	CaptionsInput
	Title  string `json:"title"`
	Format string `json:"format" binding:"omitempty,oneof=srt xlsx SRT XLSX"`
}

// StoredObjectResponse describes an object written to the storage backend.
type StoredObjectResponse struct {
	Key     string `json:"key"`
	URL     string `json:"url,omitempty"`
	FileURL string `json:"file_url,omitempty"`
}

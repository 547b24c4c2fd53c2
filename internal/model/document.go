package model

type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

type Document struct {
	ID               string         `json:"id"`
	Filename         string         `json:"filename"`
	OriginalFilename string         `json:"original_filename"`
	FileType         string         `json:"file_type"`
	FileSize         int64          `json:"file_size"`
	IsCompanyPolicy  bool           `json:"is_company_policy"`
	UploadedBy       string         `json:"uploaded_by"`
	Status           DocumentStatus `json:"status"`
	CreatedAt        Timestamp      `json:"created_at"`
	UpdatedAt        Timestamp      `json:"updated_at"`
}

// ChatSelectable reports whether the document can be picked in document chat.
// Policy documents are only reachable through the company-wide policy chat.
func (d Document) ChatSelectable() bool {
	return d.Status == DocumentStatusCompleted && !d.IsCompanyPolicy
}

func SelectableDocuments(documents []Document) []Document {
	out := make([]Document, 0, len(documents))
	for _, doc := range documents {
		if doc.ChatSelectable() {
			out = append(out, doc)
		}
	}

	return out
}

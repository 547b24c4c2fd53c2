package model

type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatFallbackMessage replaces any failed chat call in the transcript.
const ChatFallbackMessage = "Sorry, I encountered an error. Please try again."

type ChatRequest struct {
	Query            string  `json:"query"`
	DocumentID       *string `json:"document_id,omitempty"`
	UseCompanyPolicy bool    `json:"use_company_policy"`
}

type ChatResponse struct {
	Answer          string   `json:"answer"`
	SourceDocuments []string `json:"source_documents"`
}

type ChatMessage struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
	Sources []string `json:"sources,omitempty"`
}

package handler

import (
	"fmt"
	"net/http"
	"strings"

	"rag-console/internal/model"
	"rag-console/internal/service"
	"rag-console/internal/view"
)

const unselectableDocumentMessage = "That document is not available for chat. Pick one from the list."

type ChatHandler struct {
	console *Console
}

func NewChatHandler(console *Console) *ChatHandler {
	return &ChatHandler{console: console}
}

type chatView struct {
	Heading        string
	Subtitle       string
	Welcome        string
	Action         string
	DocumentMode   bool
	Documents      []model.Document
	DocumentID     string
	Transcript     []model.ChatMessage
	TranscriptJSON string
}

func (h *ChatHandler) DocumentChat(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, service.ChatModeDocument)
}

func (h *ChatHandler) PolicyChat(w http.ResponseWriter, r *http.Request) {
	h.show(w, r, service.ChatModePolicy)
}

func (h *ChatHandler) AskDocument(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, service.ChatModeDocument)
}

func (h *ChatHandler) AskPolicy(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, service.ChatModePolicy)
}

func (h *ChatHandler) show(w http.ResponseWriter, r *http.Request, mode service.ChatMode) {
	page, data := h.newPage(mode)

	if mode == service.ChatModeDocument {
		if !h.loadDocuments(w, r, &page, data) {
			return
		}
	}

	h.console.render(w, http.StatusOK, "chat", page)
}

func (h *ChatHandler) ask(w http.ResponseWriter, r *http.Request, mode service.ChatMode) {
	page, data := h.newPage(mode)

	if err := r.ParseForm(); err != nil {
		page.Error = "Could not read the chat form."
		h.console.render(w, http.StatusBadRequest, "chat", page)
		return
	}

	transcript, err := service.DecodeTranscript(r.PostForm.Get("transcript"))
	if err != nil {
		logFailure(r, "decode chat transcript", err)
		transcript = []model.ChatMessage{}
	}

	data.DocumentID = strings.TrimSpace(r.PostForm.Get("document_id"))
	data.Transcript = transcript
	data.TranscriptJSON = service.EncodeTranscript(transcript)

	if mode == service.ChatModeDocument {
		if !h.loadDocuments(w, r, &page, data) {
			return
		}
		if data.DocumentID != "" && !offered(data.Documents, data.DocumentID) {
			logFailure(r, "document chat", fmt.Errorf("%w: document %q is not selectable", model.ErrInvalidInput, data.DocumentID))
			data.DocumentID = ""
			status := http.StatusOK
			if page.Error == "" {
				page.Error = unselectableDocumentMessage
				status = http.StatusBadRequest
			}
			h.console.render(w, status, "chat", page)
			return
		}
	}

	svc := service.NewChatService(h.console.client(r).Chat(), h.console.Metrics)
	transcript, err = svc.Ask(r.Context(), mode, data.DocumentID, r.PostForm.Get("query"), transcript)
	if handleUnauthorized(w, r, err) {
		return
	}

	data.Transcript = transcript
	data.TranscriptJSON = service.EncodeTranscript(transcript)
	h.console.render(w, http.StatusOK, "chat", page)
}

// offered reports whether id is one of the documents the picker lists.
func offered(documents []model.Document, id string) bool {
	for _, doc := range documents {
		if doc.ID == id {
			return true
		}
	}
	return false
}

// loadDocuments fills the document picker. It reports false when the
// response has already been written.
func (h *ChatHandler) loadDocuments(w http.ResponseWriter, r *http.Request, page *view.Page, data *chatView) bool {
	svc := service.NewDocumentService(h.console.client(r).Documents(), h.console.Bus, h.console.AllowedExtensions)
	documents, err := svc.Selectable(r.Context())
	if handleUnauthorized(w, r, err) {
		return false
	}
	if err != nil {
		logFailure(r, "list chat documents", err)
		page.Error = errorMessage(err)
		return true
	}

	data.Documents = documents
	return true
}

func (h *ChatHandler) newPage(mode service.ChatMode) (view.Page, *chatView) {
	data := &chatView{
		Transcript:     []model.ChatMessage{},
		TranscriptJSON: "[]",
	}

	page := view.Page{Data: data}
	if mode == service.ChatModeDocument {
		page.Title = "Document Chat"
		page.Nav = "chat-document"
		data.Heading = "Document Chat"
		data.Subtitle = "Ask questions about your uploaded documents"
		data.Welcome = "Select a document and start asking questions!"
		data.Action = "/chat/document"
		data.DocumentMode = true
	} else {
		page.Title = "Company Policy Chat"
		page.Nav = "chat-policy"
		data.Heading = "Welcome to Company Policy Chat"
		data.Subtitle = "Ask any question about company policies, procedures, or guidelines"
		data.Welcome = "Ask your first question to get started."
		data.Action = "/chat/policy"
	}

	return page, data
}

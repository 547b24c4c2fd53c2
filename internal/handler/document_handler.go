package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"rag-console/internal/event"
	"rag-console/internal/model"
	"rag-console/internal/service"
	"rag-console/internal/view"
	"rag-console/pkg/apierror"
)

const refreshFailedMessage = "Could not refresh the document list. Reload the page to see the latest documents."

// multipartMemory is how much of an upload is held in memory before spilling to disk.
const multipartMemory = 8 << 20

type DocumentHandler struct {
	console *Console
}

func NewDocumentHandler(console *Console) *DocumentHandler {
	return &DocumentHandler{console: console}
}

type documentsView struct {
	Documents []model.Document
	Accept    string
	MaxUpload string
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	documents, err := h.service(r).List(r.Context())
	if handleUnauthorized(w, r, err) {
		return
	}

	page := h.page(documents)
	if err != nil {
		logFailure(r, "list documents", err)
		page.Error = errorMessage(err)
	}

	h.console.render(w, http.StatusOK, "documents", page)
}

func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.console.MaxUploadSize)

	document, documents, err := h.upload(r)
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil && !isRefreshFailure(err) {
		logFailure(r, "upload document", err)
		h.renderWithError(w, r, err)
		return
	}

	notice := "Uploaded " + document.OriginalFilename + ". Processing has started."
	if document.OriginalFilename == "" {
		notice = "Document uploaded. Processing has started."
	}
	h.renderDone(w, r, documents, notice, err)
}

func (h *DocumentHandler) upload(r *http.Request) (model.Document, []model.Document, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return model.Document{}, nil, maxBytes
		}
		return model.Document{}, nil, apierror.New("BAD_REQUEST", "Could not read the uploaded file.", err.Error(), http.StatusBadRequest)
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		return model.Document{}, nil, apierror.New("BAD_REQUEST", "Please choose a file to upload.", "", http.StatusBadRequest)
	}
	defer file.Close()

	isPolicy := strings.EqualFold(r.FormValue("is_company_policy"), "true")
	return h.service(r).Upload(r.Context(), header.Filename, file, isPolicy)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documents, err := h.service(r).Delete(r.Context(), chi.URLParam(r, "id"))
	if handleUnauthorized(w, r, err) {
		return
	}
	if err != nil && !isRefreshFailure(err) {
		logFailure(r, "delete document", err)
		h.renderWithError(w, r, err)
		return
	}

	h.renderDone(w, r, documents, "Document deleted.", err)
}

func isRefreshFailure(err error) bool {
	var refresh *service.RefreshError
	return errors.As(err, &refresh)
}

// renderDone reports a completed mutation. refreshErr is set when the list
// could not be fetched afterwards.
func (h *DocumentHandler) renderDone(w http.ResponseWriter, r *http.Request, documents []model.Document, notice string, refreshErr error) {
	page := h.page(documents)
	page.Notice = notice
	if refreshErr != nil {
		logFailure(r, "refresh documents", refreshErr)
		page.Error = refreshFailedMessage
	}
	h.console.render(w, http.StatusOK, "documents", page)
}

// renderWithError shows the current list next to the failure message.
func (h *DocumentHandler) renderWithError(w http.ResponseWriter, r *http.Request, cause error) {
	documents, err := h.service(r).List(r.Context())
	if handleUnauthorized(w, r, err) {
		return
	}

	page := h.page(documents)
	page.Error = errorMessage(cause)
	h.console.render(w, statusFor(cause), "documents", page)
}

func (h *DocumentHandler) service(r *http.Request) *service.DocumentService {
	return service.NewDocumentService(h.console.client(r).Documents(), h.console.Bus, h.console.AllowedExtensions)
}

func (h *DocumentHandler) page(documents []model.Document) view.Page {
	if documents == nil {
		documents = []model.Document{}
	}

	return view.Page{
		Title: "Documents",
		Nav:   "documents",
		Live:  string(event.TypeDocumentsChanged),
		Data: documentsView{
			Documents: documents,
			Accept:    strings.Join(h.console.AllowedExtensions, ","),
			MaxUpload: humanBytes(h.console.MaxUploadSize),
		},
	}
}

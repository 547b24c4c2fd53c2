package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"rag-console/internal/event"
	"rag-console/internal/model"
	"rag-console/internal/util"
)

// RefreshError means the mutation went through but the follow-up list fetch
// did not.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string { return "refresh documents: " + e.Err.Error() }

func (e *RefreshError) Unwrap() error { return e.Err }

type DocumentService struct {
	api               DocumentAPI
	bus               event.Bus
	allowedExtensions []string
}

func NewDocumentService(api DocumentAPI, bus event.Bus, allowedExtensions []string) *DocumentService {
	return &DocumentService{api: api, bus: bus, allowedExtensions: allowedExtensions}
}

func (s *DocumentService) List(ctx context.Context) ([]model.Document, error) {
	return s.api.List(ctx)
}

// Selectable lists the documents offered in document chat.
func (s *DocumentService) Selectable(ctx context.Context) ([]model.Document, error) {
	documents, err := s.api.List(ctx)
	if err != nil {
		return nil, err
	}

	return model.SelectableDocuments(documents), nil
}

// Upload sends one file and returns the stored document together with the
// refreshed list. A failed refresh still returns the document, with a
// *RefreshError.
func (s *DocumentService) Upload(ctx context.Context, filename string, content io.Reader, isCompanyPolicy bool) (model.Document, []model.Document, error) {
	name, err := util.CleanUploadName(filename)
	if err != nil {
		return model.Document{}, nil, err
	}
	if !util.HasAllowedExtension(name, s.allowedExtensions) {
		return model.Document{}, nil, fmt.Errorf("%w: %q", model.ErrUnsupportedFileType, util.Extension(name))
	}

	document, err := s.api.Upload(ctx, name, content, isCompanyPolicy)
	if err != nil {
		return model.Document{}, nil, err
	}

	slog.Info("document uploaded", "document_id", document.ID, "filename", name, "company_policy", isCompanyPolicy)
	s.publish("uploaded", document.ID)

	documents, err := s.api.List(ctx)
	if err != nil {
		return document, nil, &RefreshError{Err: err}
	}

	return document, documents, nil
}

func (s *DocumentService) Delete(ctx context.Context, id string) ([]model.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id is required", model.ErrInvalidInput)
	}

	if err := s.api.Delete(ctx, id); err != nil {
		return nil, err
	}

	slog.Info("document deleted", "document_id", id)
	s.publish("deleted", id)

	documents, err := s.api.List(ctx)
	if err != nil {
		return nil, &RefreshError{Err: err}
	}

	return documents, nil
}

func (s *DocumentService) publish(action string, id string) {
	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeDocumentsChanged, action, id))
	}
}

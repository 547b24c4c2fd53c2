package apiclient

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"rag-console/internal/model"
	"rag-console/internal/util"
)

type DocumentsClient struct {
	c *Client
}

func (d *DocumentsClient) List(ctx context.Context) ([]model.Document, error) {
	documents := []model.Document{}
	if err := d.c.do(ctx, request{op: "documents.list", method: http.MethodGet, path: "/documents"}, &documents); err != nil {
		return nil, err
	}

	return documents, nil
}

// Upload streams content to the backend as a multipart form with a "file"
// part and an "is_company_policy" field of "true" or "false".
func (d *DocumentsClient) Upload(ctx context.Context, filename string, content io.Reader, isCompanyPolicy bool) (model.Document, error) {
	buffered := bufio.NewReaderSize(content, 512)
	head, _ := buffered.Peek(512)
	contentType := util.DocumentContentType(filename, head)

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeUploadForm(form, filename, contentType, buffered, isCompanyPolicy))
	}()

	req := request{
		op:          "documents.upload",
		method:      http.MethodPost,
		path:        "/documents/upload",
		body:        pr,
		contentType: form.FormDataContentType(),
	}

	var document model.Document
	err := d.c.do(ctx, req, &document)
	_ = pr.Close()
	return document, err
}

func (d *DocumentsClient) Delete(ctx context.Context, id string) error {
	return d.c.do(ctx, request{op: "documents.delete", method: http.MethodDelete, path: "/documents/" + url.PathEscape(id)}, nil)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeUploadForm(form *multipart.Writer, filename string, contentType string, content io.Reader, isCompanyPolicy bool) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
	header.Set("Content-Type", contentType)

	part, err := form.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}

	if err := form.WriteField("is_company_policy", strconv.FormatBool(isCompanyPolicy)); err != nil {
		return fmt.Errorf("write policy field: %w", err)
	}

	return form.Close()
}

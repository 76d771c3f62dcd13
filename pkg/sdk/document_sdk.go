package sdk

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
)

// UploadDocument stores and indexes a document, returning its storage key
func (c *Client) UploadDocument(ctx context.Context, name string, content io.Reader) (*UploadResponse, error) {
	if strings.TrimSpace(name) == "" || content == nil {
		return nil, errs.Validation("file required")
	}

	var out UploadResponse
	if err := c.NewRequest(ctx, http.MethodPost, "/upload-doc", nil, &out).WithBearer().WithFile("file", name, content).Do(); err != nil {
		return nil, err
	}

	return &out, nil
}

// GetDocument resolves a time-limited URL for a stored document by display name
func (c *Client) GetDocument(ctx context.Context, filename string) (*DocumentURL, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, errs.Validation("filename required")
	}

	var out DocumentURL
	if err := c.NewRequest(ctx, http.MethodGet, "/get-doc/", nil, &out).WithBearer().WithQuery("filename", filename).Do(); err != nil {
		return nil, err
	}

	return &out, nil
}

// GenerateResponse asks a question about the resource stored under key
func (c *Client) GenerateResponse(ctx context.Context, query, key string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errs.Validation("question is empty")
	}

	var out Answer
	req := &GenerateRequest{Query: query, PdfID: key}
	if err := c.Do(ctx, http.MethodPost, "/generate-response", req, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteNamespaceData removes every resource indexed for the account
func (c *Client) DeleteNamespaceData(ctx context.Context) error {
	return c.Do(ctx, http.MethodDelete, "/namespace-data", nil, nil)
}

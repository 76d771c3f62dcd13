package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethanbaker/docchat/pkg/errs"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// validator is implemented by response types that check their own shape
type validator interface {
	Validate() error
}

// filePart is a single multipart file upload
type filePart struct {
	field string
	name  string
	r     io.Reader
}

// Request is a single Remote API call being assembled
type Request struct {
	c      *Client
	ctx    context.Context
	method string
	path   string
	in     any
	out    any
	query  url.Values
	bearer bool
	file   *filePart
}

// NewRequest starts building a request. in is JSON-encoded when non-nil; out
// receives the decoded 2xx body when non-nil.
func (c *Client) NewRequest(ctx context.Context, method, path string, in, out any) *Request {
	return &Request{
		c:      c,
		ctx:    ctx,
		method: method,
		path:   path,
		in:     in,
		out:    out,
		query:  url.Values{},
	}
}

// WithBearer attaches the current credential. Without one the request fails
// with KindUnauthorized before anything is sent.
func (r *Request) WithBearer() *Request {
	r.bearer = true
	return r
}

// WithQuery adds a query parameter
func (r *Request) WithQuery(key, value string) *Request {
	r.query.Add(key, value)
	return r
}

// WithFile sends the body as multipart/form-data with a single file part
func (r *Request) WithFile(field, name string, content io.Reader) *Request {
	r.file = &filePart{field: field, name: name, r: content}
	return r
}

func (r *Request) fail(kind Kind, status int, message string, err error) *Error {
	return &Error{Kind: kind, Method: r.method, Path: r.path, Status: status, Message: message, Err: err}
}

// Do sends the request and classifies the outcome. It never retries: uploads
// and questions are not idempotent.
func (r *Request) Do() error {
	var token *oauth2.Token
	if r.bearer {
		if r.c.tokens == nil {
			return r.fail(KindUnauthorized, 0, "not signed in", nil)
		}
		tok, err := r.c.tokens.Token()
		if err != nil {
			return r.fail(KindUnauthorized, 0, "not signed in", err)
		}
		token = tok
	}

	body, contentType, err := r.body()
	if err != nil {
		return err
	}

	target := r.c.baseURL + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(r.ctx, r.method, target, body)
	if err != nil {
		return fmt.Errorf("failed to build request %s %s: %w", r.method, r.path, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token != nil {
		token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := r.c.httpClient.Do(req)
	if err != nil {
		r.c.logger.Warn("request failed", zap.String("method", r.method), zap.String("path", r.path), zap.Error(err))
		return r.fail(KindNetwork, 0, "", err)
	}
	defer resp.Body.Close()

	r.c.logger.Debug("request completed",
		zap.String("method", r.method),
		zap.String("path", r.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return r.classify(resp)
	}

	// If no output expected, return early
	if r.out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(r.out); err != nil {
		return r.fail(KindServer, resp.StatusCode, "unexpected response from server", fmt.Errorf("%w: %v", errs.ErrMalformedResponse, err))
	}
	if v, ok := r.out.(validator); ok {
		if err := v.Validate(); err != nil {
			return r.fail(KindServer, resp.StatusCode, "unexpected response from server", err)
		}
	}

	return nil
}

// classify turns a non-2xx response into an *Error. A 401 on an
// authenticated request invalidates the session before returning.
func (r *Request) classify(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	msg := serverMessage(raw)

	switch {
	case resp.StatusCode == http.StatusUnauthorized && r.bearer:
		if r.c.invalidator != nil {
			r.c.invalidator.Invalidate(r.ctx)
		}
		return r.fail(KindUnauthorized, resp.StatusCode, msg, nil)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return r.fail(KindClient, resp.StatusCode, msg, nil)
	default:
		return r.fail(KindServer, resp.StatusCode, msg, nil)
	}
}

// body encodes the request payload
func (r *Request) body() (io.Reader, string, error) {
	if r.file != nil {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)

		contentType, content, err := detectContentType(r.file.name, r.file.r)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", r.file.name, err)
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(r.file.field), quoteEscaper.Replace(r.file.name)))
		header.Set("Content-Type", contentType)

		part, err := mw.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, content); err != nil {
			return nil, "", fmt.Errorf("failed to read %s: %w", r.file.name, err)
		}
		if err := mw.Close(); err != nil {
			return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
		}
		return &buf, mw.FormDataContentType(), nil
	}

	if r.in == nil {
		return nil, "", nil
	}

	b, err := json.Marshal(r.in)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(b), "application/json", nil
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// sniffLen is how much of a file http.DetectContentType considers
const sniffLen = 512

// detectContentType picks the part type from the file extension, falling
// back to sniffing the first bytes. The returned reader yields the full
// content including any sniffed prefix.
func detectContentType(name string, r io.Reader) (string, io.Reader, error) {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct, r, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", nil, err
	}
	head = head[:n]

	return http.DetectContentType(head), io.MultiReader(bytes.NewReader(head), r), nil
}

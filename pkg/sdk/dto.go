package sdk

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
)

/** Requests */

// SignInRequest represents the request body for password sign-in
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// SignUpRequest represents the request body for account creation
type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// Validate checks required fields before the request is sent
func (r *SignUpRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.Username) == "" {
		missing = append(missing, "username")
	}
	if strings.TrimSpace(r.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.FullName) == "" {
		missing = append(missing, "full name")
	}
	if r.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return errs.Validation(strings.Join(missing, ", ") + " required")
	}
	return nil
}

// GenerateRequest asks a question about a stored resource
type GenerateRequest struct {
	Query string `json:"query"`
	PdfID string `json:"pdf_id"` // storage key of the bound resource
}

// VideoRequest registers a video reference
type VideoRequest struct {
	YoutubeURL string `json:"youtube_url"`
}

/** Responses */

// TokenResponse is returned by a successful sign-in
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (r *TokenResponse) Validate() error {
	if strings.TrimSpace(r.AccessToken) == "" {
		return fmt.Errorf("%w: access_token missing", errs.ErrMalformedResponse)
	}
	return nil
}

// Profile describes the signed-in account
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
}

func (p *Profile) Validate() error {
	if p.Username == "" {
		return fmt.Errorf("%w: username missing", errs.ErrMalformedResponse)
	}
	return nil
}

// UploadResponse is returned after a document has been stored and indexed
type UploadResponse struct {
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunks_processed"`
	StorageKey      string `json:"s3_key"`
}

func (r *UploadResponse) Validate() error {
	if strings.TrimSpace(r.StorageKey) == "" {
		return fmt.Errorf("%w: s3_key missing", errs.ErrMalformedResponse)
	}
	return nil
}

// DocumentURL carries a time-limited URL for viewing a stored document
type DocumentURL struct {
	PresignedURL string `json:"presigned_url"`
}

func (d *DocumentURL) Validate() error {
	u, err := url.Parse(d.PresignedURL)
	if d.PresignedURL == "" || err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: presigned_url missing or invalid", errs.ErrMalformedResponse)
	}
	return nil
}

// Answer is the backend's reply to a question. Response may be empty when the
// backend found nothing relevant.
type Answer struct {
	Message  string `json:"message"`
	Response string `json:"response"`
}

// VideoResponse is returned after a video transcript has been indexed
type VideoResponse struct {
	Message         string `json:"message"`
	ChunksProcessed int    `json:"chunks_processed"`
	VideoID         string `json:"video_id"`
}

func (r *VideoResponse) Validate() error {
	if strings.TrimSpace(r.VideoID) == "" {
		return fmt.Errorf("%w: video_id missing", errs.ErrMalformedResponse)
	}
	return nil
}

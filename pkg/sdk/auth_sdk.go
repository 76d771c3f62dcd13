package sdk

import (
	"context"
	"net/http"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
)

// SignIn exchanges a username and password for an access token
func (c *Client) SignIn(ctx context.Context, username, password string) (*TokenResponse, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, errs.Validation("username and password required")
	}

	var out TokenResponse
	req := &SignInRequest{Username: username, Password: password}
	if err := c.NewRequest(ctx, http.MethodPost, "/signin", req, &out).Do(); err != nil {
		return nil, err
	}

	return &out, nil
}

// SignUp creates a new account
func (c *Client) SignUp(ctx context.Context, req *SignUpRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out Profile
	if err := c.NewRequest(ctx, http.MethodPost, "/signup", req, &out).Do(); err != nil {
		return nil, err
	}

	return &out, nil
}

// GoogleLoginURL returns the OAuth entry point. The browser is sent there and
// the backend eventually redirects to /auth/callback?access_token=...
func (c *Client) GoogleLoginURL() string {
	return c.BaseURL() + "/google"
}

// GetProfile returns the signed-in account
func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.Do(ctx, http.MethodGet, "/get-profile", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

package sdk

import (
	"context"
	"net/http"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
)

// UploadVideo registers a video reference and indexes its transcript
func (c *Client) UploadVideo(ctx context.Context, videoURL string) (*VideoResponse, error) {
	if strings.TrimSpace(videoURL) == "" {
		return nil, errs.Validation("video URL required")
	}

	var out VideoResponse
	req := &VideoRequest{YoutubeURL: videoURL}
	if err := c.NewRequest(ctx, http.MethodPost, "/youtube/upload", req, &out).WithBearer().Do(); err != nil {
		return nil, err
	}

	return &out, nil
}

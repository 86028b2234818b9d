// Package imgbb is an imagehost.Host backed by the ImgBB upload API.
package imgbb

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/costa-brava-bikers/clubhouse-api/internal/ports/out/imagehost"
)

const DefaultUploadURL = "https://api.imgbb.com/1/upload"

type Options struct {
	APIKey    string
	UploadURL string
	Timeout   time.Duration
}

type Client struct {
	http      *resty.Client
	apiKey    string
	uploadURL string
}

var _ imagehost.Host = (*Client)(nil)

func New(opts Options) *Client {
	u := opts.UploadURL
	if u == "" {
		u = DefaultUploadURL
	}
	c := resty.New().SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		c.SetTimeout(opts.Timeout)
	}
	return &Client{http: c, apiKey: opts.APIKey, uploadURL: u}
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    *struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Upload posts the image as multipart form data. A response the host marks
// unsuccessful becomes a *imagehost.RejectedError carrying its message.
func (c *Client) Upload(ctx context.Context, img imagehost.Image) (string, error) {
	if c.apiKey == "" {
		return "", imagehost.ErrNotConfigured
	}
	name := img.Filename
	if name == "" {
		name = "image"
	}
	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"key": c.apiKey}).
		SetFileReader("image", name, bytes.NewReader(img.Data)).
		SetResult(&out).
		SetError(&out).
		Post(c.uploadURL)
	if err != nil {
		return "", fmt.Errorf("imgbb request: %w", err)
	}
	// Anything but a JSON body (proxy error pages, empty replies) is a transport failure.
	if ct := resp.Header().Get("Content-Type"); !strings.Contains(strings.ToLower(ct), "json") {
		return "", fmt.Errorf("imgbb response %d: unexpected content type %q", resp.StatusCode(), ct)
	}
	if out.Success && out.Data != nil && out.Data.URL != "" {
		return out.Data.URL, nil
	}
	rej := &imagehost.RejectedError{}
	if out.Error != nil {
		rej.Message = out.Error.Message
	}
	return "", rej
}

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/stegoweb/imagetrigger/internal/modules/upload/domain"
)

// DefaultPath is where the image server accepts the current image.
const DefaultPath = "/current_image"

var ErrInvalidServerURL = errors.New("image server url must be absolute http(s)")

// Config holds the upload endpoint settings.
type Config struct {
	ServerURL string
	Path      string
	// Timeout bounds a whole request. Zero means no limit.
	Timeout time.Duration
}

// Uploader posts payloads to the image server.
type Uploader struct {
	client   *http.Client
	endpoint string
}

// NewUploader creates an uploader. A nil client gets a fresh one honouring
// cfg.Timeout.
func NewUploader(cfg Config, client *http.Client) (*Uploader, error) {
	base, err := url.Parse(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidServerURL, err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidServerURL, cfg.ServerURL)
	}

	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Uploader{
		client:   client,
		endpoint: base.JoinPath(path).String(),
	}, nil
}

// Endpoint returns the absolute URL uploads are posted to.
func (u *Uploader) Endpoint() string {
	return u.endpoint
}

// Upload sends the payload. Any HTTP response, whatever its status, is a
// success; only transport failures are returned as errors.
func (u *Uploader) Upload(ctx context.Context, payload domain.Payload) (domain.Response, error) {
	body, contentType, err := EncodePayload(payload)
	if err != nil {
		return domain.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, body)
	if err != nil {
		return domain.Response{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return domain.Response{}, fmt.Errorf("post %s: %w", u.endpoint, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return domain.Response{StatusCode: resp.StatusCode, Status: resp.Status}, nil
}

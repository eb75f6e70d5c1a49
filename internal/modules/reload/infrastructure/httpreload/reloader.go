package httpreload

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/stegoweb/imagetrigger/internal/modules/reload/domain"
)

// DefaultTimeout bounds one page fetch when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Reloader performs the server round trip of a page reload: it fetches the
// page again. The status is logged, never inspected.
type Reloader struct {
	client  *http.Client
	pageURL string
	timeout time.Duration
}

// NewReloader creates a reloader for pageURL. A zero timeout means
// DefaultTimeout; client may be nil.
func NewReloader(pageURL string, timeout time.Duration, client *http.Client) *Reloader {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Reloader{client: client, pageURL: pageURL, timeout: timeout}
}

func (r *Reloader) Name() string {
	return "http"
}

func (r *Reloader) Notify(ctx context.Context, event domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.pageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build reload request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("reload %s: %w", r.pageURL, err)
	}
	defer resp.Body.Close()
	n, _ := io.Copy(io.Discard, resp.Body)

	log.Printf("[HTTP Reload] %s -> %s (%d bytes)", r.pageURL, resp.Status, n)
	return nil
}

package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/vk/searchengine/internal/ctxlog"
)

const userAgent = "searchengine-build/1.0"

// limiter keeps build-time fetches polite toward CDNs and raw file hosts.
var limiter = rate.NewLimiter(rate.Every(250*time.Millisecond), 4)

var client = &http.Client{Timeout: 2 * time.Minute}

// StatusError is returned when a fetch completes with a non-2xx status.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: %s", e.URL, e.Status)
}

// Get fetches a URL, honoring the package rate limit. The caller owns the
// response body. A non-2xx status is a *StatusError.
func Get(ctx context.Context, url, accept string) (*http.Response, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, &StatusError{URL: url, Status: resp.Status, Code: resp.StatusCode}
	}
	return resp, nil
}

// FetchToFile downloads url into dest. The body is streamed to a temp file
// in dest's directory and renamed into place, so dest either holds the
// complete download or does not exist.
func FetchToFile(ctx context.Context, url, accept, dest string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Info("Downloading.", "url", url, "dest", dest)

	resp, err := Get(ctx, url, accept)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("reading %s: %w", url, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return err
	}

	logger.Debug("Download complete.", "dest", dest, "bytes", written)
	return nil
}

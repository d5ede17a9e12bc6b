package docs

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Loader fetches static reference text from a local file path or an
// http(s) URL. Callers substitute a placeholder string on error; the
// loader itself never blocks startup beyond its own timeout.
type Loader struct {
	httpClient *http.Client
}

func NewLoader() *Loader {
	return &Loader{
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (l *Loader) FetchText(ctx context.Context, resource string) (string, error) {
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		return l.fetchURL(ctx, resource)
	}

	data, err := os.ReadFile(resource)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", resource, err)
	}
	return string(data), nil
}

func (l *Loader) fetchURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	res, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(body), nil
}

package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// HTTPStatusError is returned when a GET does not answer 2xx.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("source: GET %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func openHTTP(ctx context.Context, client *http.Client, u *url.URL) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &HTTPStatusError{URL: u.Redacted(), StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

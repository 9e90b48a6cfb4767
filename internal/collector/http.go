package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/newthinker/deepvalue/internal/core"
)

// maxBodySize caps provider responses; full statement histories stay well below it.
const maxBodySize = 32 << 20

// Get issues a GET and returns the body of a 2xx response. Every failure is
// an ErrFetchFailed naming provider and endpoint; the URL is never echoed
// because it carries the API key.
func Get(ctx context.Context, client *http.Client, provider, endpoint, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s %s: building request: %w", provider, endpoint, redact(err)))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s %s: %w", provider, endpoint, redact(err)))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, core.WrapError(core.ErrFetchFailed,
			fmt.Errorf("%s %s: unexpected status: %d", provider, endpoint, resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, core.WrapError(core.ErrFetchFailed, fmt.Errorf("%s %s: reading body: %w", provider, endpoint, err))
	}
	return body, nil
}

// redact strips the request URL from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// ParseError builds an ErrParseFailed for a provider field.
func ParseError(provider, endpoint, format string, args ...any) error {
	return core.WrapError(core.ErrParseFailed,
		fmt.Errorf("%s %s: %s", provider, endpoint, fmt.Sprintf(format, args...)))
}

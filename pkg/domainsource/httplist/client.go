// Package httplist provides a domainsource.Source backed by a list published
// over HTTP, such as the community maintained disposable-email-domains list.
package httplist

import (
	"context"
	"io"
	"net/http"
	"strings"

	"mailguard/pkg/domain"
	"mailguard/pkg/domainsource"
	"mailguard/pkg/serrors"

	"github.com/go-faster/errors"
)

// DefaultURL is the list used when no URL is configured.
const DefaultURL = "https://disposable.github.io/disposable-email-domains/domains.txt"

// userAgent is sent with every list request.
const userAgent = "mailguard/1 (+disposable-email-gate)"

// maxErrorBody caps how much of a failed response ends up in the error.
const maxErrorBody = 512

// Client downloads one published list. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client // httpClient performs the list download
	url        string
	format     domainsource.Format
}

// Fetch downloads and parses the list. Non-2xx responses are errors; a 429 is
// reported as serrors.ErrRateLimited and a 404 as serrors.ErrNotFound.
func (c *Client) Fetch(ctx context.Context) (*domain.DomainSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/plain, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "get %s", c.url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, serrors.With(serrors.ErrRateLimited, "list %s rate limited", c.url)
	case resp.StatusCode == http.StatusNotFound:
		return nil, serrors.With(serrors.ErrNotFound, "list %s not found", c.url)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, errors.Errorf("get %s: status %d: %s", c.url, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	format := c.format
	if format == domainsource.FormatAuto && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		format = domainsource.FormatJSON
	}

	set, err := domainsource.Parse(resp.Body, format)
	if err != nil {
		return nil, errors.Wrapf(err, "parse %s", c.url)
	}

	return set, nil
}

// URL returns the list location.
func (c *Client) URL() string { return c.url }

var _ domainsource.Source = (*Client)(nil)

// New constructs a Client for url. An empty url selects DefaultURL and an empty
// format selects domainsource.FormatAuto.
func New(httpClient *http.Client, url string, format domainsource.Format) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if url == "" {
		url = DefaultURL
	}
	if format == "" {
		format = domainsource.FormatAuto
	}

	return &Client{
		httpClient: httpClient,
		url:        url,
		format:     format,
	}
}

package fetch

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/resilience"
)

// browserHeaders mimic a conventional desktop browser; some sites serve
// empty shells or block pages to obvious bots.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"DNT":             "1",
	"Connection":      "keep-alive",
}

// HTTPFetcher is the tier-2 plain HTTP fallback.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates the fallback fetcher with conservative timeouts.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: timeout,
				}).DialContext,
				TLSHandshakeTimeout: timeout,
			},
		},
	}
}

func (h *HTTPFetcher) Method() model.AcquisitionMethod { return model.MethodHTTP }

// Fetch downloads url and returns its cleaned text.
func (h *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "http: create request")
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "http: fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		statusErr := eris.Errorf("http: status %d for %s", resp.StatusCode, url)
		if resilience.RetryableStatus(resp.StatusCode) {
			return nil, resilience.Retryable(statusErr, resp.StatusCode)
		}
		return nil, statusErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 512*1024))
	if err != nil {
		return nil, eris.Wrap(err, "http: read body")
	}

	html := string(body)
	content := CleanHTML(html)
	if content == "" {
		return nil, eris.Errorf("http: empty page %s", url)
	}

	return &Page{Title: ExtractTitle(html), Content: content}, nil
}

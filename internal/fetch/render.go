package fetch

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
)

// RenderFetcher loads pages in a headless browser so script-driven
// content is present before extraction.
type RenderFetcher struct {
	timeout time.Duration
	settle  time.Duration
	opts    []chromedp.ExecAllocatorOption
}

// NewRenderFetcher creates the tier-1 rendering fetcher. timeout bounds
// the whole navigation; a short settle pause lets page scripts run
// after the document is ready.
func NewRenderFetcher(timeout time.Duration) *RenderFetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RenderFetcher{
		timeout: timeout,
		settle:  2 * time.Second,
		opts: append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.UserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"),
		),
	}
}

func (r *RenderFetcher) Method() model.AcquisitionMethod { return model.MethodRender }

// Fetch navigates to url, waits for the document and a settle period,
// then returns the cleaned visible text.
func (r *RenderFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html, title string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "render: fetch %s", url)
	}

	content := CleanHTML(html)
	if content == "" {
		return nil, eris.Errorf("render: empty page %s", url)
	}

	return &Page{Title: title, Content: content}, nil
}

package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/diligence-cli/internal/model"
)

type stubFetcher struct {
	method  model.AcquisitionMethod
	page    *Page
	err     error
	calls   int
}

func (s *stubFetcher) Fetch(_ context.Context, _ string) (*Page, error) {
	s.calls++
	return s.page, s.err
}

func (s *stubFetcher) Method() model.AcquisitionMethod { return s.method }

func hit() model.EvidenceSource {
	return model.EvidenceSource{
		URL:     "https://example.com/about",
		Title:   "search title",
		Snippet: "search snippet",
	}
}

func TestChain_FirstTierWins(t *testing.T) {
	tier1 := &stubFetcher{method: model.MethodRender, page: &Page{Title: "Rendered", Content: "rendered text"}}
	tier2 := &stubFetcher{method: model.MethodHTTP, page: &Page{Content: "plain text"}}

	c := NewChain(100, tier1, tier2)
	src := c.Fetch(context.Background(), hit())

	assert.Equal(t, model.MethodRender, src.Method)
	assert.Equal(t, "rendered text", src.Content)
	assert.Equal(t, "Rendered", src.Title)
	assert.Equal(t, "search snippet", src.Snippet)
	assert.Zero(t, tier2.calls)
}

func TestChain_FallsThroughOnTimeout(t *testing.T) {
	tier1 := &stubFetcher{method: model.MethodRender, err: eris.New("render: fetch timeout")}
	tier2 := &stubFetcher{method: model.MethodHTTP, page: &Page{Title: "Plain", Content: "plain text"}}

	c := NewChain(100, tier1, tier2)
	src := c.Fetch(context.Background(), hit())

	assert.Equal(t, model.MethodHTTP, src.Method)
	assert.NotEqual(t, tier1.Method(), src.Method)
	assert.Equal(t, "plain text", src.Content)
	assert.Equal(t, 1, tier1.calls)
	assert.Equal(t, 1, tier2.calls)
}

func TestChain_AllTiersFailIsNotAnError(t *testing.T) {
	tier1 := &stubFetcher{method: model.MethodRender, err: eris.New("render: crashed")}
	tier2 := &stubFetcher{method: model.MethodHTTP, err: eris.New("http: status 403")}

	c := NewChain(100, tier1, tier2)
	src := c.Fetch(context.Background(), hit())

	assert.Equal(t, model.MethodNone, src.Method)
	assert.Empty(t, src.Content)
	assert.False(t, src.Success())
	// Search metadata survives total acquisition failure.
	assert.Equal(t, "search title", src.Title)
	assert.Equal(t, "search snippet", src.Snippet)
}

func TestChain_PerHostRateLimiting(t *testing.T) {
	tier := &stubFetcher{method: model.MethodHTTP, page: &Page{Content: "x"}}

	// 10 req/s: second request to the same host must wait ~100ms.
	c := NewChain(10, tier)

	start := time.Now()
	c.Fetch(context.Background(), hit())
	c.Fetch(context.Background(), hit())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 90*time.Millisecond)
}

func TestCleanHTML_StripsNonContent(t *testing.T) {
	html := `<html><head><title>Acme Corp</title><style>body{}</style></head>
	<body><nav>menu</nav><script>alert(1)</script>
	<p>Acme &amp; Sons builds rockets.</p>
	<footer>copyright</footer><iframe src="x"></iframe></body></html>`

	text := CleanHTML(html)
	assert.Contains(t, text, "Acme & Sons builds rockets.")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "copyright")
	assert.Equal(t, "Acme Corp", ExtractTitle(html))
}

func TestTruncate_CapsContent(t *testing.T) {
	long := make([]byte, maxContentChars+1000)
	for i := range long {
		long[i] = 'a'
	}
	assert.Len(t, CleanHTML(string(long)), maxContentChars)

	// Multi-byte runes are not split.
	s := "héllo wörld"
	out := Truncate(s, 2)
	assert.LessOrEqual(t, len(out), 2)
	assert.Equal(t, "h", out)
}

// Package fetch acquires cleaned page text for evidence gathering using
// a two-tier fallback: a rendering browser fetch first, then a plain
// HTTP fetch. Total acquisition failure is a normal low-information
// result, never an error.
package fetch

import (
	"context"

	"github.com/sells-group/diligence-cli/internal/model"
)

// Page is the raw output of a single fetch tier before snippet/metadata
// from the search result are merged in.
type Page struct {
	Title   string
	Content string
}

// Fetcher fetches one URL and returns its cleaned text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Method() model.AcquisitionMethod
}

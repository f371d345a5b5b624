package view

import (
	"context"
	"strings"
	"sync"
	"time"

	"doctrack-be/internal/models"
)

// DocumentFetch loads one server-side page of a customer's documents.
type DocumentFetch func(ctx context.Context, customerID string, filter models.DocumentFilter, page, pageSize int) (*models.DocumentPage, error)

// DocumentBrowser is a filtered, paginated view over one customer's
// documents. Pagination is server-side with a fixed page size; the name
// query is applied client-side to the loaded page only.
type DocumentBrowser struct {
	fetch DocumentFetch

	mu         sync.Mutex
	customerID string
	filter     models.DocumentFilter
	nameQuery  string
	page       int
}

func NewDocumentBrowser(fetch DocumentFetch) *DocumentBrowser {
	return &DocumentBrowser{fetch: fetch}
}

// OpenFor points the browser at a customer. Filters, name query and page
// reset when the customer id changes, not when the browser is merely
// reopened for the same customer.
func (b *DocumentBrowser) OpenFor(customerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.customerID != customerID {
		b.filter = models.DocumentFilter{}
		b.nameQuery = ""
		b.page = 0
	}
	b.customerID = customerID
}

// SetDateRange sets the inclusive created-at range and resets to page 0.
func (b *DocumentBrowser) SetDateRange(from, to *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.DateFrom = from
	b.filter.DateTo = to
	b.page = 0
}

// SetDateFrom changes only the lower bound, keeping the upper one, and
// resets to page 0. A nil bound clears it.
func (b *DocumentBrowser) SetDateFrom(from *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.DateFrom = from
	b.page = 0
}

// SetDateTo changes only the upper bound, keeping the lower one, and resets
// to page 0. A nil bound clears it.
func (b *DocumentBrowser) SetDateTo(to *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.DateTo = to
	b.page = 0
}

// SetTypes sets the document type tag filter and resets to page 0. An empty
// set means no type filter.
func (b *DocumentBrowser) SetTypes(types []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Types = types
	b.page = 0
}

// SetNameQuery sets the client-side name filter and resets to page 0.
func (b *DocumentBrowser) SetNameQuery(q string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nameQuery = strings.TrimSpace(q)
	b.page = 0
}

// SetPage moves to the given zero-based page.
func (b *DocumentBrowser) SetPage(page int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if page < 0 {
		page = 0
	}
	b.page = page
}

// Fetch loads the current page and applies the name filter to it. The total
// remains the server-side count across all pages of the active filter.
func (b *DocumentBrowser) Fetch(ctx context.Context) (*models.DocumentPage, error) {
	b.mu.Lock()
	customerID := b.customerID
	filter := b.filter
	nameQuery := b.nameQuery
	page := b.page
	b.mu.Unlock()

	result, err := b.fetch(ctx, customerID, filter, page, models.DocumentPageSize)
	if err != nil {
		return nil, err
	}
	if nameQuery != "" {
		needle := strings.ToLower(nameQuery)
		kept := result.Documents[:0]
		for _, doc := range result.Documents {
			if strings.Contains(strings.ToLower(doc.Name), needle) {
				kept = append(kept, doc)
			}
		}
		result.Documents = kept
	}
	return result, nil
}

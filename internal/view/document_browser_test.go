package view

import (
	"context"
	"testing"
	"time"

	"doctrack-be/internal/models"
)

// recordingFetch captures the arguments of the last fetch and returns a
// canned page.
type recordingFetch struct {
	customerID string
	filter     models.DocumentFilter
	page       int
	pageSize   int
	result     *models.DocumentPage
}

func (r *recordingFetch) fetch(ctx context.Context, customerID string, filter models.DocumentFilter, page, pageSize int) (*models.DocumentPage, error) {
	r.customerID = customerID
	r.filter = filter
	r.page = page
	r.pageSize = pageSize
	if r.result == nil {
		return &models.DocumentPage{Page: page, PageSize: pageSize}, nil
	}
	page2 := *r.result
	page2.Documents = append([]models.CustomerDocument(nil), r.result.Documents...)
	return &page2, nil
}

func TestFetchPassesFilterAndFixedPageSize(t *testing.T) {
	rec := &recordingFetch{}
	b := NewDocumentBrowser(rec.fetch)
	b.OpenFor("acme")

	from := time.Date(2026, 8, 1, 14, 30, 0, 0, time.UTC)
	to := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	b.SetDateRange(&from, &to)
	b.SetTypes([]string{models.DocumentTypeInvoice})
	b.SetPage(3)

	if _, err := b.Fetch(context.Background()); err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if rec.customerID != "acme" {
		t.Fatalf("customer = %q, want acme", rec.customerID)
	}
	if rec.pageSize != models.DocumentPageSize {
		t.Fatalf("page size = %d, want %d", rec.pageSize, models.DocumentPageSize)
	}
	if rec.page != 3 {
		t.Fatalf("page = %d, want 3", rec.page)
	}
	if rec.filter.DateFrom == nil || !rec.filter.DateFrom.Equal(from) {
		t.Fatalf("dateFrom = %v, want %v", rec.filter.DateFrom, from)
	}
	if len(rec.filter.Types) != 1 || rec.filter.Types[0] != models.DocumentTypeInvoice {
		t.Fatalf("types = %v", rec.filter.Types)
	}
}

func TestFilterChangesResetPage(t *testing.T) {
	rec := &recordingFetch{}
	b := NewDocumentBrowser(rec.fetch)
	b.OpenFor("acme")
	b.SetPage(4)

	b.SetTypes([]string{models.DocumentTypeOther})
	b.Fetch(context.Background())
	if rec.page != 0 {
		t.Fatalf("type change left page at %d", rec.page)
	}

	b.SetPage(4)
	b.SetNameQuery("invoice")
	b.Fetch(context.Background())
	if rec.page != 0 {
		t.Fatalf("name change left page at %d", rec.page)
	}

	b.SetPage(4)
	to := time.Now()
	b.SetDateRange(nil, &to)
	b.Fetch(context.Background())
	if rec.page != 0 {
		t.Fatalf("date change left page at %d", rec.page)
	}
}

func TestDateBoundsMergeIndependently(t *testing.T) {
	rec := &recordingFetch{}
	b := NewDocumentBrowser(rec.fetch)
	b.OpenFor("acme")

	to := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	b.SetDateTo(&to)

	// Changing only the lower bound keeps the upper one.
	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	b.SetDateFrom(&from)

	b.Fetch(context.Background())
	if rec.filter.DateTo == nil || !rec.filter.DateTo.Equal(to) {
		t.Fatalf("dateTo lost when only dateFrom changed: %v", rec.filter.DateTo)
	}
	if rec.filter.DateFrom == nil || !rec.filter.DateFrom.Equal(from) {
		t.Fatalf("dateFrom = %v, want %v", rec.filter.DateFrom, from)
	}

	// A nil bound clears just that bound.
	b.SetDateTo(nil)
	b.Fetch(context.Background())
	if rec.filter.DateTo != nil {
		t.Fatalf("dateTo not cleared: %v", rec.filter.DateTo)
	}
	if rec.filter.DateFrom == nil {
		t.Fatal("clearing dateTo dropped dateFrom")
	}
}

func TestFiltersResetOnlyOnCustomerChange(t *testing.T) {
	rec := &recordingFetch{}
	b := NewDocumentBrowser(rec.fetch)

	b.OpenFor("acme")
	b.SetTypes([]string{models.DocumentTypeInvoice})
	b.SetPage(2)

	// Reopening the same customer keeps filter and page.
	b.OpenFor("acme")
	b.Fetch(context.Background())
	if len(rec.filter.Types) != 1 || rec.page != 2 {
		t.Fatalf("same-customer reopen reset state: types=%v page=%d", rec.filter.Types, rec.page)
	}

	// Switching customers starts clean.
	b.OpenFor("beta")
	b.Fetch(context.Background())
	if len(rec.filter.Types) != 0 || rec.page != 0 {
		t.Fatalf("customer switch kept state: types=%v page=%d", rec.filter.Types, rec.page)
	}
}

func TestNameQueryFiltersLoadedPageOnly(t *testing.T) {
	rec := &recordingFetch{result: &models.DocumentPage{
		Documents: []models.CustomerDocument{
			{ID: "1", Name: "Invoice March"},
			{ID: "2", Name: "Contract"},
			{ID: "3", Name: "invoice april"},
		},
		Total:    60,
		PageSize: models.DocumentPageSize,
	}}
	b := NewDocumentBrowser(rec.fetch)
	b.OpenFor("acme")
	b.SetNameQuery("  Invoice ")

	page, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(page.Documents) != 2 {
		t.Fatalf("filtered page has %d docs, want 2", len(page.Documents))
	}
	// The total stays the server-side count across all pages.
	if page.Total != 60 {
		t.Fatalf("total = %d, want 60", page.Total)
	}
}

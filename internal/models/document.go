package models

import "time"

// Document type tags. The ingestion pipeline only ever produces these two.
const (
	DocumentTypeInvoice = "invoice"
	DocumentTypeOther   = "other"
)

// DocumentPageSize is the fixed server-side page size for document browsing.
const DocumentPageSize = 25

// CustomerDocument is one ingested document belonging to a customer.
// Rows are written by the external ingestion process; this service only
// reads them.
type CustomerDocument struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	CustomerID string    `json:"customerId" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"not null"`
	Location   string    `json:"location" gorm:"not null"`
	Type       string    `json:"type" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt" gorm:"not null;index"`
}

// DocumentFilter narrows a document listing. DateFrom is truncated to the
// start of its day and DateTo is forced to the end of its day regardless of
// the time component supplied. An empty Types set means no type filter.
type DocumentFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Types    []string
}

// DocumentPage is one server-side page of documents plus the total count
// across all pages for the active filter.
type DocumentPage struct {
	Documents []CustomerDocument `json:"documents"`
	Total     int64              `json:"total"`
	Page      int                `json:"page"`
	PageSize  int                `json:"pageSize"`
}

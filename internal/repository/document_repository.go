package repository

import (
	"context"
	"time"

	"doctrack-be/internal/models"

	"gorm.io/gorm"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// GetPage returns one page of a customer's documents, newest first, plus the
// total count for the filter. Page is zero-based. The inclusive date range is
// clamped before querying: from drops its time component, to is forced to the
// very end of its day no matter what time was supplied.
func (r *DocumentRepository) GetPage(ctx context.Context, customerID string, filter models.DocumentFilter, page, pageSize int) (*models.DocumentPage, error) {
	if pageSize <= 0 {
		pageSize = models.DocumentPageSize
	}
	if page < 0 {
		page = 0
	}

	query := r.db.WithContext(ctx).Model(&models.CustomerDocument{}).Where("customer_id = ?", customerID)

	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", StartOfDay(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query = query.Where("created_at <= ?", EndOfDay(*filter.DateTo))
	}
	if len(filter.Types) > 0 {
		query = query.Where("type IN ?", filter.Types)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var documents []models.CustomerDocument
	if err := query.
		Order("created_at DESC").
		Offset(page * pageSize).
		Limit(pageSize).
		Find(&documents).Error; err != nil {
		return nil, err
	}

	return &models.DocumentPage{
		Documents: documents,
		Total:     total,
		Page:      page,
		PageSize:  pageSize,
	}, nil
}

// GetByID returns one document.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*models.CustomerDocument, error) {
	var doc models.CustomerDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create inserts a document row. The ingestion pipeline owns document
// creation in production; this path exists for seeding and tests.
func (r *DocumentRepository) Create(ctx context.Context, doc *models.CustomerDocument) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

// StartOfDay truncates t to midnight in its location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay forces t to 23:59:59.999999999 in its location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

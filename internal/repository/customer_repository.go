package repository

import (
	"context"
	"time"

	"doctrack-be/internal/models"

	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// GetActive returns all active customers, normalized.
func (r *CustomerRepository) GetActive(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("id ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	normalizeAll(customers)
	return customers, nil
}

// GetAll returns every customer including inactive ones (management view).
func (r *CustomerRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	var customers []models.Customer
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&customers).Error; err != nil {
		return nil, err
	}
	normalizeAll(customers)
	return customers, nil
}

// GetByID returns one customer.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	customer.Normalize()
	return &customer, nil
}

// Create inserts a new customer row.
func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	customer.UpdatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return err
	}
	customer.Normalize()
	return nil
}

// Update applies mutable-field changes and records the acting user as the
// tagged actor reference.
func (r *CustomerRepository) Update(ctx context.Context, id string, updates map[string]interface{}, actor models.ActorRef) error {
	updates["updated_at"] = time.Now().UTC()
	updates["updated_by_kind"] = actor.Kind
	updates["updated_by_value"] = actor.Value
	return r.db.WithContext(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes a customer and its documents.
func (r *CustomerRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.CustomerDocument{}, "customer_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Customer{}, "id = ?", id).Error
	})
}

// CounterSums aggregates the stored counters across active customers.
func (r *CustomerRepository) CounterSums(ctx context.Context) (inProcess, other, inbox int64, err error) {
	row := struct {
		InProcess int64
		Other     int64
		Inbox     int64
	}{}
	err = r.db.WithContext(ctx).Model(&models.Customer{}).
		Select("COALESCE(SUM(in_process),0) AS in_process, COALESCE(SUM(other),0) AS other, COALESCE(SUM(inbox),0) AS inbox").
		Where("active = ?", true).
		Scan(&row).Error
	return row.InProcess, row.Other, row.Inbox, err
}

// TopTotals returns the summed totals of the top-N active customers by total.
func (r *CustomerRepository) TopTotals(ctx context.Context, topN int) (int64, error) {
	if topN <= 0 {
		topN = models.DefaultTopN
	}
	var total int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COALESCE(SUM(t.total), 0) FROM (
			SELECT in_process + other + inbox AS total
			FROM customers
			WHERE active = true
			ORDER BY total DESC
			LIMIT ?
		) t
	`, topN).Scan(&total).Error
	return total, err
}

func normalizeAll(customers []models.Customer) {
	for i := range customers {
		customers[i].Normalize()
	}
}

package repository

import (
	"context"
	"errors"
	"time"

	"doctrack-be/internal/models"

	"gorm.io/gorm"
)

// ErrNotAuthorized reports that the acting user does not hold the role an
// admin-only repository method requires. The HTTP middleware gates these
// surfaces too; the repository check is the defensive second layer.
var ErrNotAuthorized = errors.New("not authorized")

// hasAdminRole is the shared defensive check for admin-only data access.
// Lookup failures count as "not authorized".
func hasAdminRole(ctx context.Context, db *gorm.DB, userID string) bool {
	var count int64
	if err := db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, models.RoleAdmin).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByResetToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "reset_token = ? AND reset_token <> ''", token).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"refresh_token": token, "updated_at": time.Now().UTC()}).Error
}

func (r *UserRepository) UpdatePassword(ctx context.Context, userID, hash string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"password_hash": hash, "reset_token": "", "updated_at": time.Now().UTC()}).Error
}

func (r *UserRepository) SetResetToken(ctx context.Context, userID, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"reset_token": token, "updated_at": time.Now().UTC()}).Error
}

// ========== Roles ==========

// HasRole reports whether the user holds the given role. Lookup failures
// degrade to false rather than erroring: the callers treat "cannot verify"
// the same as "not authorized".
func (r *UserRepository) HasRole(ctx context.Context, userID, role string) bool {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}

// GetRole returns the user's highest role, defaulting to "user".
func (r *UserRepository) GetRole(ctx context.Context, userID string) string {
	if r.HasRole(ctx, userID, models.RoleAdmin) {
		return models.RoleAdmin
	}
	return models.RoleUser
}

// AssignRole replaces the user's role memberships with a single role. The
// relation supports several roles per user but the management view only ever
// assigns one at a time. The actor must hold the admin role; callers that
// reach this without it get ErrNotAuthorized.
func (r *UserRepository) AssignRole(ctx context.Context, actorID, userID, role string) error {
	if !hasAdminRole(ctx, r.db, actorID) {
		return ErrNotAuthorized
	}
	return r.setRole(ctx, userID, role)
}

// GrantDefaultRole gives a freshly created account the plain user role. Only
// signup uses this; everything else goes through AssignRole.
func (r *UserRepository) GrantDefaultRole(ctx context.Context, userID string) error {
	return r.setRole(ctx, userID, models.RoleUser)
}

func (r *UserRepository) setRole(ctx context.Context, userID, role string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.UserRole{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Create(&models.UserRole{UserID: userID, Role: role}).Error
	})
}

// ListWithRoles returns all users joined with their role for the management
// view. Users without a membership row come back as "user". Non-admin actors
// get an empty list rather than the directory.
func (r *UserRepository) ListWithRoles(ctx context.Context, actorID string) ([]models.UserWithRole, error) {
	if !hasAdminRole(ctx, r.db, actorID) {
		return []models.UserWithRole{}, nil
	}
	var rows []models.UserWithRole
	err := r.db.WithContext(ctx).Raw(`
		SELECT u.id, u.email, u.name, COALESCE(ur.role, 'user') AS role
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.created_at ASC
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

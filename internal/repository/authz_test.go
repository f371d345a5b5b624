package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"doctrack-be/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	// A single connection keeps the in-memory database alive for the test.
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.User{}, &models.UserRole{}, &models.AppSettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id, role string) {
	t.Helper()
	user := models.User{ID: id, Email: id + "@example.com", Password: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
	if role != "" {
		if err := db.Create(&models.UserRole{UserID: id, Role: role}).Error; err != nil {
			t.Fatalf("seed role %s: %v", id, err)
		}
	}
}

func TestAssignRoleRequiresAdminActor(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "admin-1", models.RoleAdmin)
	seedUser(t, db, "user-1", models.RoleUser)
	seedUser(t, db, "user-2", models.RoleUser)

	err := repo.AssignRole(ctx, "user-1", "user-2", models.RoleAdmin)
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("non-admin actor: err = %v, want ErrNotAuthorized", err)
	}
	if repo.HasRole(ctx, "user-2", models.RoleAdmin) {
		t.Fatal("non-admin actor escalated another user to admin")
	}

	if err := repo.AssignRole(ctx, "admin-1", "user-2", models.RoleAdmin); err != nil {
		t.Fatalf("admin actor: %v", err)
	}
	if !repo.HasRole(ctx, "user-2", models.RoleAdmin) {
		t.Fatal("admin assignment did not take effect")
	}
}

func TestListWithRolesHidesDirectoryFromNonAdmins(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	seedUser(t, db, "admin-1", models.RoleAdmin)
	seedUser(t, db, "user-1", models.RoleUser)
	seedUser(t, db, "user-3", "") // no membership row, listed as "user"

	users, err := repo.ListWithRoles(ctx, "user-1")
	if err != nil {
		t.Fatalf("non-admin list: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("non-admin actor received %d users, want none", len(users))
	}

	users, err = repo.ListWithRoles(ctx, "admin-1")
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("admin list = %d users, want 3", len(users))
	}
	for _, u := range users {
		if u.ID == "user-3" && u.Role != models.RoleUser {
			t.Fatalf("user without membership row listed as %q", u.Role)
		}
	}
}

func TestSettingsUpdateRequiresAdminActor(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	seedUser(t, db, "admin-1", models.RoleAdmin)
	seedUser(t, db, "user-1", models.RoleUser)
	if err := db.Create(&models.AppSettings{ID: models.SettingsID, HistoryWindow: 10, TopN: 5}).Error; err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	err := repo.Update(ctx, "user-1", map[string]interface{}{"history_window": 20})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("non-admin actor: err = %v, want ErrNotAuthorized", err)
	}
	settings, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("get settings: %v", err)
	}
	if settings.HistoryWindow != 10 {
		t.Fatalf("non-admin update changed the row: window = %d", settings.HistoryWindow)
	}

	if err := repo.Update(ctx, "admin-1", map[string]interface{}{"history_window": 20}); err != nil {
		t.Fatalf("admin update: %v", err)
	}
	settings, _ = repo.Get(ctx)
	if settings.HistoryWindow != 20 {
		t.Fatalf("admin update did not apply: window = %d", settings.HistoryWindow)
	}

	// The automation stamp is written on behalf of any signed-in user and
	// bypasses the admin check.
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.SetLastAutomationRun(ctx, at); err != nil {
		t.Fatalf("set last automation run: %v", err)
	}
	settings, _ = repo.Get(ctx)
	if settings.LastAutomationRun == nil || !settings.LastAutomationRun.Equal(at) {
		t.Fatalf("lastAutomationRun = %v, want %v", settings.LastAutomationRun, at)
	}
}

func TestSettingsUpdateRefusesToCreateRow(t *testing.T) {
	db := newTestDB(t)
	repo := NewSettingsRepository(db)
	ctx := context.Background()

	seedUser(t, db, "admin-1", models.RoleAdmin)

	err := repo.Update(ctx, "admin-1", map[string]interface{}{"history_window": 20})
	if !errors.Is(err, ErrSettingsMissing) {
		t.Fatalf("update without row: err = %v, want ErrSettingsMissing", err)
	}
}

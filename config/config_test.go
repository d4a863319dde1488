package config

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s/config.db", t.TempDir())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func testConfig() *Config {
	return &Config{
		AdminName:     "Admin User",
		AdminEmail:    "admin@eventease.com",
		AdminPassword: "admin123",
	}
}

func TestEnsureAdminCreates(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()

	if err := EnsureAdmin(db, cfg); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	var admin models.User
	if err := db.Where("email = ?", cfg.AdminEmail).First(&admin).Error; err != nil {
		t.Fatalf("admin account missing after bootstrap: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Errorf("expected role admin, got %q", admin.Role)
	}
	if admin.IsBlocked {
		t.Error("bootstrap admin must not be blocked")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(cfg.AdminPassword)); err != nil {
		t.Error("admin password hash does not match the canonical password")
	}
}

// The bootstrap self-heals: a tampered admin account is forced back to
// the canonical configuration on the next startup.
func TestEnsureAdminResets(t *testing.T) {
	db := newTestDB(t)
	cfg := testConfig()

	if err := EnsureAdmin(db, cfg); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}

	var admin models.User
	db.Where("email = ?", cfg.AdminEmail).First(&admin)
	admin.Role = models.RoleAttendee
	admin.IsBlocked = true
	admin.Password = "mangled"
	if err := db.Save(&admin).Error; err != nil {
		t.Fatalf("failed to tamper with admin: %v", err)
	}

	if err := EnsureAdmin(db, cfg); err != nil {
		t.Fatalf("EnsureAdmin (second run): %v", err)
	}

	var healed models.User
	db.Where("email = ?", cfg.AdminEmail).First(&healed)
	if healed.ID != admin.ID {
		t.Fatal("bootstrap must reset the existing account, not create a new one")
	}
	if healed.Role != models.RoleAdmin || healed.IsBlocked {
		t.Errorf("expected role/block reset, got role=%q blocked=%v", healed.Role, healed.IsBlocked)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(healed.Password), []byte(cfg.AdminPassword)); err != nil {
		t.Error("expected password force-reset to the canonical value")
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single account after repeated bootstraps, got %d", count)
	}
}

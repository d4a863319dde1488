package config

import (
	"fmt"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/internal/models"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	AdminName     string
	AdminEmail    string
	AdminPassword string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),

		AdminName:     envOrDefault("ADMIN_NAME", "Admin User"),
		AdminEmail:    envOrDefault("ADMIN_EMAIL", "admin@eventease.com"),
		AdminPassword: envOrDefault("ADMIN_PASSWORD", "admin123"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	// TranslateError turns unique-constraint violations into
	// gorm.ErrDuplicatedKey; the duplicate guards rely on it.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	if err := EnsureAdmin(db, cfg); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.User{}, &models.Event{}, &models.Registration{})
}

// EnsureAdmin guarantees the reserved admin account exists with the
// canonical configuration. An existing account gets its role, block
// flag and password force-reset, so the bootstrap is idempotent and
// self-healing across restarts.
func EnsureAdmin(db *gorm.DB, cfg *Config) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var admin models.User
	result := db.Where("email = ?", cfg.AdminEmail).First(&admin)
	if result.Error != nil {
		admin = models.User{
			Name:     cfg.AdminName,
			Email:    cfg.AdminEmail,
			Password: string(hashedPassword),
			Role:     models.RoleAdmin,
		}
		return db.Create(&admin).Error
	}

	admin.Role = models.RoleAdmin
	admin.IsBlocked = false
	admin.Password = string(hashedPassword)
	return db.Save(&admin).Error
}

package database

import (
	"doctrack-be/internal/models"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Postgres struct {
	DB *gorm.DB
}

// NewPostgres opens the database and runs auto-migrations.
func NewPostgres(dsn string) (*Postgres, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Customer{},
		&models.CustomerDocument{},
		&models.StatsSnapshot{},
		&models.AppSettings{},
		&models.User{},
		&models.UserRole{},
	); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	log.Println("Successfully connected to Postgres")

	return &Postgres{DB: db}, nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	sqlDB, err := p.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

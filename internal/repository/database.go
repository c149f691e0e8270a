// File: internal/repository/database.go
package repository

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iyunix/go-onyom/internal/domain"
	"github.com/iyunix/go-onyom/internal/repository/message"
)

// Open connects to the sqlite database at path and migrates every table
// the repositories use.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Account{},
		&domain.RevokedToken{},
		&domain.VerificationCode{},
		&domain.Profile{},
		&domain.Chat{},
		&message.Record{},
	); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

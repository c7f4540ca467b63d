package bootstrap

import (
	"fmt"

	"gorm.io/gorm"

	"medibill/internal/models"
)

// Migrate ensures the billing schema exists.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Bill{},
		&models.BillDetail{},
		&models.Transaction{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

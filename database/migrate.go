package database

import (
	"fmt"

	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

// requiredIndexes are the uniqueness guarantees the booking rules rely on.
var requiredIndexes = []struct {
	model interface{}
	name  string
}{
	{&models.Table{}, "idx_restaurant_table_number"},
	{&models.Reservation{}, "idx_reservation_slot"},
}

// Migrate creates or updates the schema and verifies the unique indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Restaurant{},
		&models.Table{},
		&models.Reservation{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	for _, idx := range requiredIndexes {
		if !db.Migrator().HasIndex(idx.model, idx.name) {
			return fmt.Errorf("index %s is missing after migration", idx.name)
		}
		utils.InfoLogger.Debugf("Index verified: %s", idx.name)
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

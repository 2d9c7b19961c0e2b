package models

type Table struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	RestaurantID uint        `gorm:"not null;uniqueIndex:idx_restaurant_table_number,priority:1" json:"restaurant_id"`
	Restaurant   *Restaurant `gorm:"foreignKey:RestaurantID" json:"restaurant,omitempty"`
	TableNumber  int         `gorm:"not null;uniqueIndex:idx_restaurant_table_number,priority:2" json:"table_number"`
	Capacity     int         `gorm:"not null" json:"capacity"`
}

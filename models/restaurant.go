package models

type Restaurant struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Location string  `gorm:"type:varchar(255);not null" json:"location"`
	DinoType string  `gorm:"type:varchar(30);not null" json:"dino_type"`
	Tables   []Table `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"tables,omitempty"`
}

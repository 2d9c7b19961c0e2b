package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	StatusReserved  = "reserved"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether s is one of the two reservation states.
func ValidStatus(s string) bool {
	return s == StatusReserved || s == StatusCancelled
}

type Reservation struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TableID         uint      `gorm:"not null;index;uniqueIndex:idx_reservation_slot,priority:1" json:"table_id"`
	Table           *Table    `gorm:"foreignKey:TableID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"table,omitempty"`
	CustomerName    string    `gorm:"type:varchar(100);not null" json:"customer_name"`
	Phone           string    `gorm:"type:varchar(30);not null" json:"phone"`
	PartySize       int       `gorm:"not null" json:"party_size"`
	ReservationTime time.Time `gorm:"not null;index;uniqueIndex:idx_reservation_slot,priority:2" json:"reservation_time"`
	Status          string    `gorm:"type:varchar(20);not null;default:'reserved';index" json:"status"`
	// SlotHeld is true while the reservation occupies its slot and NULL
	// otherwise, so the slot index only constrains active reservations.
	SlotHeld  *bool     `gorm:"uniqueIndex:idx_reservation_slot,priority:3" json:"-"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (r *Reservation) BeforeSave(tx *gorm.DB) error {
	r.syncSlot()
	return nil
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.Status == "" {
		r.Status = StatusReserved
	}
	r.syncSlot()
	return nil
}

func (r *Reservation) syncSlot() {
	if r.Status == StatusReserved {
		held := true
		r.SlotHeld = &held
		return
	}
	r.SlotHeld = nil
}

// Cancel marks the reservation cancelled. Cancelling twice is a no-op.
func (r *Reservation) Cancel() {
	r.Status = StatusCancelled
	r.syncSlot()
}

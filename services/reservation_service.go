package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

// ReservationService admits new reservations and drives their lifecycle.
type ReservationService struct {
	DB        *gorm.DB
	Clock     Clock
	Publisher Publisher
}

func NewReservationService(db *gorm.DB, clock Clock, pub Publisher) *ReservationService {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &ReservationService{DB: db, Clock: clock, Publisher: pub}
}

type CreateReservationInput struct {
	TableID         uint
	CustomerName    string
	Phone           string
	PartySize       int
	ReservationTime time.Time
}

// ReservationPatch carries the fields a caller wants to change. Nil means
// "leave untouched".
type ReservationPatch struct {
	CustomerName    *string
	Phone           *string
	PartySize       *int
	ReservationTime *time.Time
	Status          *string
}

func (in CreateReservationInput) validate() error {
	if in.TableID == 0 {
		return &ValidationError{Field: "table_id", Reason: "is required"}
	}
	if strings.TrimSpace(in.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Reason: "is required"}
	}
	if strings.TrimSpace(in.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "is required"}
	}
	if in.PartySize < 1 {
		return &ValidationError{Field: "party_size", Reason: "must be at least 1"}
	}
	if in.ReservationTime.IsZero() {
		return &ValidationError{Field: "reservation_time", Reason: "is required"}
	}
	return nil
}

func (p ReservationPatch) validate() error {
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Reason: "must not be empty"}
	}
	if p.Phone != nil && strings.TrimSpace(*p.Phone) == "" {
		return &ValidationError{Field: "phone", Reason: "must not be empty"}
	}
	if p.PartySize != nil && *p.PartySize < 1 {
		return &ValidationError{Field: "party_size", Reason: "must be at least 1"}
	}
	if p.ReservationTime != nil && p.ReservationTime.IsZero() {
		return &ValidationError{Field: "reservation_time", Reason: "must not be empty"}
	}
	if p.Status != nil && !models.ValidStatus(*p.Status) {
		return &ValidationError{Field: "status", Reason: "must be reserved or cancelled"}
	}
	return nil
}

func (p ReservationPatch) apply(r *models.Reservation) {
	if p.CustomerName != nil {
		r.CustomerName = *p.CustomerName
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.PartySize != nil {
		r.PartySize = *p.PartySize
	}
	if p.ReservationTime != nil {
		r.ReservationTime = p.ReservationTime.UTC()
	}
	if p.Status != nil {
		r.Status = *p.Status
	}
}

// Create admits a reservation: the table must exist, the exact slot must be
// free and the party must fit. Check and insert share one transaction and
// the slot index rejects a concurrent duplicate.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	at := in.ReservationTime.UTC()

	var res models.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var table models.Table
		if err := tx.First(&table, in.TableID).Error; err != nil {
			return notFound("Table", in.TableID, err)
		}

		if err := checkSlotFree(tx, in.TableID, at, 0); err != nil {
			return err
		}

		if in.PartySize > table.Capacity {
			return &CapacityError{Capacity: table.Capacity}
		}

		res = models.Reservation{
			TableID:         in.TableID,
			CustomerName:    in.CustomerName,
			Phone:           in.Phone,
			PartySize:       in.PartySize,
			ReservationTime: at,
			Status:          models.StatusReserved,
			CreatedAt:       s.Clock.Instant(),
		}
		if err := tx.Create(&res).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"table_id":       res.TableID,
		"party_size":     res.PartySize,
	}).Info("Reservation created")
	s.Publisher.Publish(Event{Type: EventReservationCreated, Reservation: &res})
	return &res, nil
}

// Correct applies patch without re-checking capacity or slot conflicts. It
// is the administrative escape hatch; the slot index still refuses a second
// active reservation on the same table and instant.
func (s *ReservationService) Correct(ctx context.Context, id uint, patch ReservationPatch) (*models.Reservation, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var res models.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			return notFound("Reservation", id, err)
		}
		patch.apply(&res)
		return saveReservation(tx, &res)
	})
	if err != nil {
		return nil, err
	}

	s.Publisher.Publish(Event{Type: EventReservationUpdated, Reservation: &res})
	return &res, nil
}

// Rebook applies patch and then re-runs the admission checks against the
// resulting row when it is still active.
func (s *ReservationService) Rebook(ctx context.Context, id uint, patch ReservationPatch) (*models.Reservation, error) {
	if err := patch.validate(); err != nil {
		return nil, err
	}

	var res models.Reservation
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&res, id).Error; err != nil {
			return notFound("Reservation", id, err)
		}
		patch.apply(&res)

		if res.Status == models.StatusReserved {
			var table models.Table
			if err := tx.First(&table, res.TableID).Error; err != nil {
				return notFound("Table", res.TableID, err)
			}
			if err := checkSlotFree(tx, res.TableID, res.ReservationTime, res.ID); err != nil {
				return err
			}
			if res.PartySize > table.Capacity {
				return &CapacityError{Capacity: table.Capacity}
			}
		}
		return saveReservation(tx, &res)
	})
	if err != nil {
		return nil, err
	}

	s.Publisher.Publish(Event{Type: EventReservationUpdated, Reservation: &res})
	return &res, nil
}

// Cancel sets the status to cancelled. It succeeds on an already cancelled
// reservation.
func (s *ReservationService) Cancel(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	db := s.DB.WithContext(ctx)
	if err := db.First(&res, id).Error; err != nil {
		return nil, notFound("Reservation", id, err)
	}

	res.Cancel()
	if err := db.Save(&res).Error; err != nil {
		return nil, err
	}

	utils.InfoLogger.WithField("reservation_id", res.ID).Info("Reservation cancelled")
	s.Publisher.Publish(Event{Type: EventReservationCancelled, Reservation: &res})
	return &res, nil
}

// Get loads one reservation together with its table and restaurant.
func (s *ReservationService) Get(ctx context.Context, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := s.DB.WithContext(ctx).Preload("Table.Restaurant").First(&res, id).Error; err != nil {
		return nil, notFound("Reservation", id, err)
	}
	return &res, nil
}

// PurgeCutoff is the instant before which cancelled reservations are
// eligible for retention cleanup.
func (s *ReservationService) PurgeCutoff(olderThanDays int) time.Time {
	return s.Clock.now().AddDate(0, 0, -olderThanDays)
}

func (s *ReservationService) purgeable(ctx context.Context, olderThanDays int) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Where("status = ? AND reservation_time < ?", models.StatusCancelled, s.PurgeCutoff(olderThanDays))
}

// CountPurgeable previews how many rows Purge would delete.
func (s *ReservationService) CountPurgeable(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays < 0 {
		return 0, &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	var n int64
	err := s.purgeable(ctx, olderThanDays).Count(&n).Error
	return n, err
}

// Purge hard-deletes cancelled reservations older than olderThanDays.
// Callers are expected to have obtained operator confirmation.
func (s *ReservationService) Purge(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays < 0 {
		return 0, &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	result := s.purgeable(ctx, olderThanDays).Delete(&models.Reservation{})
	if result.Error != nil {
		return 0, result.Error
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"deleted":         result.RowsAffected,
		"older_than_days": olderThanDays,
	}).Info("Old cancelled reservations purged")
	if result.RowsAffected > 0 {
		s.Publisher.Publish(Event{Type: EventReservationsPurged, Count: result.RowsAffected})
	}
	return result.RowsAffected, nil
}

func checkSlotFree(tx *gorm.DB, tableID uint, at time.Time, exceptID uint) error {
	q := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND status = ? AND reservation_time = ?", tableID, models.StatusReserved, at)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	return nil
}

func saveReservation(tx *gorm.DB, res *models.Reservation) error {
	if err := tx.Omit("Table").Save(res).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// IsNotFound is a convenience for callers outside the package.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

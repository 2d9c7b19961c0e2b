package services

import (
	"context"
	"time"

	"github.com/yeremiapane/dino-reserve/models"
	"gorm.io/gorm"
)

// OccupancyMode selects the lower bound used to decide whether a table is
// taken.
type OccupancyMode int

const (
	// WholeDay counts any active reservation from midnight today onwards,
	// including ones whose time has already passed.
	WholeDay OccupancyMode = iota
	// FromNow only counts active reservations at or after the current instant.
	FromNow
)

const DefaultReservationLimit = 20

// ReportService answers the read-only questions asked by the API and the CLI.
type ReportService struct {
	DB    *gorm.DB
	Clock Clock
}

func NewReportService(db *gorm.DB, clock Clock) *ReportService {
	return &ReportService{DB: db, Clock: clock}
}

type Stats struct {
	Restaurants  int64 `json:"restaurants"`
	Tables       int64 `json:"tables"`
	Reservations int64 `json:"reservations"`
	Reserved     int64 `json:"reserved"`
	Cancelled    int64 `json:"cancelled"`
	Upcoming     int64 `json:"upcoming"`
}

type ReservationSummary struct {
	ID              uint      `json:"id"`
	CustomerName    string    `json:"customer_name"`
	Phone           string    `json:"phone"`
	PartySize       int       `json:"party_size"`
	ReservationTime time.Time `json:"reservation_time"`
	Status          string    `json:"status"`
}

type TableStatus struct {
	ID                 uint                `json:"id"`
	TableNumber        int                 `json:"table_number"`
	Capacity           int                 `json:"capacity"`
	RestaurantID       uint                `json:"restaurant_id"`
	IsReserved         bool                `json:"is_reserved"`
	CurrentReservation *ReservationSummary `json:"current_reservation"`
}

type ReservationFilter struct {
	RestaurantID uint
	Status       string
	Limit        int
	Offset       int
	// NewestFirst orders by reservation time descending and preloads the
	// table and restaurant, as the CLI listing does.
	NewestFirst bool
}

type RestaurantOccupancy struct {
	Restaurant     models.Restaurant `json:"restaurant"`
	ReservedTables int64             `json:"reserved_tables"`
	TotalTables    int64             `json:"total_tables"`
}

func (s *ReportService) since(mode OccupancyMode) time.Time {
	if mode == FromNow {
		return s.Clock.now()
	}
	return s.Clock.StartOfDay()
}

func (s *ReportService) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.DB.WithContext(ctx)

	if err := db.Model(&models.Restaurant{}).Count(&st.Restaurants).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Table{}).Count(&st.Tables).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Reservation{}).Count(&st.Reservations).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Reservation{}).Where("status = ?", models.StatusReserved).Count(&st.Reserved).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Reservation{}).Where("status = ?", models.StatusCancelled).Count(&st.Cancelled).Error; err != nil {
		return st, err
	}
	err := db.Model(&models.Reservation{}).
		Where("status = ? AND reservation_time > ?", models.StatusReserved, s.Clock.now()).
		Count(&st.Upcoming).Error
	return st, err
}

func (s *ReportService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	err := s.DB.WithContext(ctx).Order("id").Find(&restaurants).Error
	return restaurants, err
}

func (s *ReportService) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var r models.Restaurant
	if err := s.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, notFound("Restaurant", id, err)
	}
	return &r, nil
}

// ActiveReservation returns the reservation currently occupying tableID
// under mode, or nil when the table is free.
func (s *ReportService) ActiveReservation(ctx context.Context, tableID uint, mode OccupancyMode) (*models.Reservation, error) {
	var rows []models.Reservation
	err := s.DB.WithContext(ctx).
		Where("table_id = ? AND status = ? AND reservation_time >= ?", tableID, models.StatusReserved, s.since(mode)).
		Order("reservation_time").Order("id").
		Limit(1).
		Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// TableBoard lists the tables of a restaurant in creation order with their
// occupancy.
func (s *ReportService) TableBoard(ctx context.Context, restaurantID uint, mode OccupancyMode) (*models.Restaurant, []TableStatus, error) {
	restaurant, err := s.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}

	var tables []models.Table
	if err := s.DB.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Order("id").Find(&tables).Error; err != nil {
		return nil, nil, err
	}

	board := make([]TableStatus, 0, len(tables))
	for _, t := range tables {
		active, err := s.ActiveReservation(ctx, t.ID, mode)
		if err != nil {
			return nil, nil, err
		}
		status := TableStatus{
			ID:           t.ID,
			TableNumber:  t.TableNumber,
			Capacity:     t.Capacity,
			RestaurantID: t.RestaurantID,
			IsReserved:   active != nil,
		}
		if active != nil {
			status.CurrentReservation = &ReservationSummary{
				ID:              active.ID,
				CustomerName:    active.CustomerName,
				Phone:           active.Phone,
				PartySize:       active.PartySize,
				ReservationTime: active.ReservationTime,
				Status:          active.Status,
			}
		}
		board = append(board, status)
	}
	return restaurant, board, nil
}

func (s *ReportService) ListReservations(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	if f.Status != "" && !models.ValidStatus(f.Status) {
		return nil, &ValidationError{Field: "status", Reason: "must be reserved or cancelled"}
	}
	if f.Limit < 0 || f.Offset < 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must not be negative"}
	}

	q := s.DB.WithContext(ctx).Model(&models.Reservation{}).
		Joins("JOIN tables ON tables.id = reservations.table_id")
	if f.RestaurantID != 0 {
		q = q.Where("tables.restaurant_id = ?", f.RestaurantID)
	}
	if f.Status != "" {
		q = q.Where("reservations.status = ?", f.Status)
	}
	if f.NewestFirst {
		q = q.Preload("Table.Restaurant").Order("reservations.reservation_time DESC")
	} else {
		q = q.Order("reservations.id")
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Reservation
	err := q.Find(&out).Error
	return out, err
}

// Upcoming lists active reservations between now and now+days, soonest
// first.
func (s *ReportService) Upcoming(ctx context.Context, days int) ([]models.Reservation, error) {
	if days < 0 {
		return nil, &ValidationError{Field: "days", Reason: "must not be negative"}
	}
	now := s.Clock.now()
	var out []models.Reservation
	err := s.DB.WithContext(ctx).Preload("Table.Restaurant").
		Where("status = ? AND reservation_time BETWEEN ? AND ?", models.StatusReserved, now, now.AddDate(0, 0, days)).
		Order("reservation_time").
		Find(&out).Error
	return out, err
}

// Occupancy reports, per restaurant, how many tables hold an active
// reservation at or after now.
func (s *ReportService) Occupancy(ctx context.Context) ([]RestaurantOccupancy, error) {
	restaurants, err := s.ListRestaurants(ctx)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	now := s.Clock.now()
	out := make([]RestaurantOccupancy, 0, len(restaurants))
	for _, r := range restaurants {
		row := RestaurantOccupancy{Restaurant: r}
		if err := db.Model(&models.Table{}).Where("restaurant_id = ?", r.ID).Count(&row.TotalTables).Error; err != nil {
			return nil, err
		}
		err := db.Model(&models.Reservation{}).
			Joins("JOIN tables ON tables.id = reservations.table_id").
			Where("tables.restaurant_id = ? AND reservations.status = ? AND reservations.reservation_time >= ?",
				r.ID, models.StatusReserved, now).
			Distinct("reservations.table_id").
			Count(&row.ReservedTables).Error
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, nil
}

// Since returns when time t is relative to the clock, for display.
func (s *ReportService) Since(t time.Time) time.Duration {
	return t.Sub(s.Clock.now())
}

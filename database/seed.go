package database

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

const TablesPerRestaurant = 25

var seedRestaurants = []models.Restaurant{
	{Name: "T-Rex Tavern", Location: "Downtown Dino District", DinoType: "trex"},
	{Name: "Bronto Bistro", Location: "Jurassic Junction", DinoType: "bronto"},
	{Name: "Raptor Restaurant", Location: "Cretaceous Corner", DinoType: "raptor"},
	{Name: "Stego Steakhouse", Location: "Triassic Trail", DinoType: "stego"},
	{Name: "Pterodactyl Pub", Location: "Sky Valley", DinoType: "ptero"},
}

var customerNames = []string{
	"John Dino", "Sarah Rex", "Mike Saur", "Emily Raptor", "David Stego",
	"Lisa Bronto", "Chris Ptero", "Amanda Trike", "James Ankylo", "Rachel Diplo",
	"Tom Velo", "Jennifer Carno", "Mark Allo", "Nicole Herrera", "Brian Mega",
	"Stephanie Coelo", "Kevin Pachy", "Michelle Steno", "Ryan Iguano", "Laura Compso",
}

// evening seatings offered by the sample data
var seatingHours = []int{17, 18, 19, 20, 21}

// TableCapacity is the seating of table n (1-based) in a seeded restaurant.
func TableCapacity(n int) int {
	switch {
	case n <= 10:
		return 2
	case n <= 20:
		return 4
	default:
		return 6
	}
}

// SeedReference inserts the restaurants and their tables when the store has
// none. It reports whether anything was written.
func SeedReference(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		utils.InfoLogger.Println("Restaurants already exist, skipping reference seed")
		return false, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range seedRestaurants {
			restaurant := r
			if err := tx.Create(&restaurant).Error; err != nil {
				return err
			}
			tables := make([]models.Table, 0, TablesPerRestaurant)
			for i := 1; i <= TablesPerRestaurant; i++ {
				tables = append(tables, models.Table{
					RestaurantID: restaurant.ID,
					TableNumber:  i,
					Capacity:     TableCapacity(i),
				})
			}
			if err := tx.Create(&tables).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	utils.InfoLogger.Printf("Seeded %d restaurants with %d tables each", len(seedRestaurants), TablesPerRestaurant)
	return true, nil
}

type SampleOptions struct {
	Upcoming int
	Past     int
	Rand     *rand.Rand
}

// SeedSamples books random future reservations through the admission path
// and backfills past ones directly. It returns how many rows were written.
func SeedSamples(ctx context.Context, db *gorm.DB, svc *services.ReservationService, opts SampleOptions) (int, error) {
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	var tables []models.Table
	if err := db.WithContext(ctx).Order("id").Find(&tables).Error; err != nil {
		return 0, err
	}
	if len(tables) == 0 {
		return 0, errors.New("no tables to book, seed restaurants first")
	}

	now := svc.Clock.Instant()
	written := 0

	for i := 0; i < opts.Upcoming; i++ {
		table := tables[rng.Intn(len(tables))]
		day := now.AddDate(0, 0, 1+rng.Intn(14))
		_, err := svc.Create(ctx, services.CreateReservationInput{
			TableID:         table.ID,
			CustomerName:    customerNames[rng.Intn(len(customerNames))],
			Phone:           randomPhone(rng),
			PartySize:       1 + rng.Intn(table.Capacity),
			ReservationTime: seating(day, seatingHours[rng.Intn(len(seatingHours))], rng),
		})
		if errors.Is(err, services.ErrConflict) {
			continue
		}
		if err != nil {
			return written, err
		}
		written++
	}

	past := make([]models.Reservation, 0, opts.Past)
	for i := 0; i < opts.Past; i++ {
		table := tables[rng.Intn(len(tables))]
		day := now.AddDate(0, 0, -(1 + rng.Intn(60)))
		status := models.StatusReserved
		if rng.Intn(3) == 0 {
			status = models.StatusCancelled
		}
		past = append(past, models.Reservation{
			TableID:         table.ID,
			CustomerName:    customerNames[rng.Intn(len(customerNames))],
			Phone:           randomPhone(rng),
			PartySize:       1 + rng.Intn(table.Capacity),
			ReservationTime: seating(day, seatingHours[rng.Intn(len(seatingHours))], rng),
			Status:          status,
		})
	}
	for i := range past {
		err := db.WithContext(ctx).Create(&past[i]).Error
		if err != nil && !errors.Is(err, gorm.ErrDuplicatedKey) {
			return written, err
		}
		if err == nil {
			written++
		}
	}

	utils.InfoLogger.Printf("Seeded %d sample reservations", written)
	return written, nil
}

func seating(day time.Time, hour int, rng *rand.Rand) time.Time {
	y, m, d := day.Date()
	minute := []int{0, 15, 30, 45}[rng.Intn(4)]
	return time.Date(y, m, d, hour, minute, 0, 0, day.Location()).UTC()
}

func randomPhone(rng *rand.Rand) string {
	return fmt.Sprintf("+1-555-%03d-%04d", 100+rng.Intn(900), 1000+rng.Intn(9000))
}

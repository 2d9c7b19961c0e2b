package cli

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dino-reserve/config"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
)

var testNow = time.Date(2030, time.June, 15, 12, 0, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	_, err = database.SeedReference(context.Background(), db)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.AdminJWTSecret = "cli-secret"
	return &Env{Config: cfg, DB: db, Clock: services.FixedClock(testNow)}
}

func run(t *testing.T, env *Env, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(env)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func book(t *testing.T, env *Env, tableID uint, at time.Time) *models.Reservation {
	t.Helper()
	res, err := env.reservations().Create(context.Background(), services.CreateReservationInput{
		TableID: tableID, CustomerName: "Rachel Diplo", Phone: "555-0101", PartySize: 2, ReservationTime: at,
	})
	require.NoError(t, err)
	return res
}

func TestStatsCommand(t *testing.T) {
	env := newTestEnv(t)
	book(t, env, 1, testNow.Add(time.Hour))

	out, err := run(t, env, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "DINO RESERVE DATABASE STATISTICS")
	assert.Contains(t, out, "Total Tables")
	assert.Contains(t, out, "125")
	assert.Contains(t, out, "Upcoming Reservations")
}

func TestRestaurantsAndTablesCommands(t *testing.T) {
	env := newTestEnv(t)
	book(t, env, 1, testNow.Add(time.Hour))
	// earlier today: occupied for the API, free for the CLI
	book(t, env, 2, testNow.Add(-time.Hour))

	out, err := run(t, env, "", "restaurants")
	require.NoError(t, err)
	assert.Contains(t, out, "T-Rex Tavern")
	assert.Contains(t, out, "1/25")
	assert.Contains(t, out, "0/25")

	out, err = run(t, env, "", "tables", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "TABLES FOR T-REX TAVERN")
	assert.Contains(t, out, "Rachel Diplo")
	assert.Equal(t, 1, strings.Count(out, "Reserved"))

	_, err = run(t, env, "", "tables", "99")
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = run(t, env, "", "tables", "x")
	assert.ErrorIs(t, err, services.ErrValidation)
}

func TestReservationsCommand(t *testing.T) {
	env := newTestEnv(t)
	a := book(t, env, 1, testNow.Add(time.Hour))
	book(t, env, 2, testNow.Add(2*time.Hour))
	_, err := env.reservations().Cancel(context.Background(), a.ID)
	require.NoError(t, err)

	out, err := run(t, env, "", "reservations", "--status", "cancelled")
	require.NoError(t, err)
	assert.Contains(t, out, "x cancelled")
	assert.NotContains(t, out, "+ reserved")
	assert.Contains(t, out, "Table 1")

	_, err = run(t, env, "", "reservations", "--status", "seated")
	assert.Error(t, err)
}

func TestUpcomingCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "", "upcoming")
	require.NoError(t, err)
	assert.Contains(t, out, "No upcoming reservations!")

	book(t, env, 3, testNow.Add(5*time.Hour))
	out, err = run(t, env, "", "upcoming", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "in 5h")
	assert.Contains(t, out, "Total: 1 reservations")
}

func TestCancelCommandConfirmation(t *testing.T) {
	env := newTestEnv(t)
	res := book(t, env, 1, testNow.Add(time.Hour))
	id := fmt.Sprint(res.ID)

	out, err := run(t, env, "no\n", "cancel", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Operation aborted")
	got, err := env.reservations().Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, got.Status)

	out, err = run(t, env, "yes\n", "cancel", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Reservation cancelled!")
	got, err = env.reservations().Get(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, got.Status)

	_, err = run(t, env, "", "cancel", "404", "--yes")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestCleanupCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "", "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "No old cancelled reservations to clean up!")

	old := models.Reservation{
		TableID: 1, CustomerName: "Old", Phone: "1", PartySize: 2,
		ReservationTime: testNow.AddDate(0, 0, -45), Status: models.StatusCancelled,
	}
	require.NoError(t, env.DB.Create(&old).Error)

	out, err = run(t, env, "n\n", "cleanup")
	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 old cancelled reservations (before 2030-05-16)")
	assert.Contains(t, out, "Operation aborted")

	out, err = run(t, env, "", "cleanup", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 1 old reservations!")
}

func TestSeedCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "", "seed", "--samples", "5", "--past", "2", "--rand-seed", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Restaurants already exist, skipping")
	assert.Contains(t, out, "sample reservations")

	var count int64
	require.NoError(t, env.DB.Model(&models.Reservation{}).Count(&count).Error)
	assert.Greater(t, count, int64(0))
}

func TestTokenCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := run(t, env, "", "token", "--subject", "night-shift")
	require.NoError(t, err)

	claims, err := utils.ParseAdminToken([]byte("cli-secret"), strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "night-shift", claims.Subject)

	env.Config.AdminJWTSecret = ""
	_, err = run(t, env, "", "token")
	assert.Error(t, err)
}

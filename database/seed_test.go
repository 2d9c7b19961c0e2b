package database_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/services"
)

func TestTableCapacity(t *testing.T) {
	assert.Equal(t, 2, database.TableCapacity(1))
	assert.Equal(t, 2, database.TableCapacity(10))
	assert.Equal(t, 4, database.TableCapacity(11))
	assert.Equal(t, 4, database.TableCapacity(20))
	assert.Equal(t, 6, database.TableCapacity(21))
	assert.Equal(t, 6, database.TableCapacity(25))
}

func TestSeedReference(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	ctx := context.Background()

	created, err := database.SeedReference(ctx, db)
	require.NoError(t, err)
	assert.True(t, created)

	var restaurants, tables int64
	require.NoError(t, db.Model(&models.Restaurant{}).Count(&restaurants).Error)
	require.NoError(t, db.Model(&models.Table{}).Count(&tables).Error)
	assert.Equal(t, int64(5), restaurants)
	assert.Equal(t, int64(5*database.TablesPerRestaurant), tables)

	var sixSeaters int64
	require.NoError(t, db.Model(&models.Table{}).Where("capacity = ?", 6).Count(&sixSeaters).Error)
	assert.Equal(t, int64(25), sixSeaters)

	created, err = database.SeedReference(ctx, db)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSeedSamples(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = database.SeedReference(ctx, db)
	require.NoError(t, err)

	now := time.Date(2030, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc := services.NewReservationService(db, services.FixedClock(now), nil)
	n, err := database.SeedSamples(ctx, db, svc, database.SampleOptions{
		Upcoming: 15,
		Past:     5,
		Rand:     rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	assert.Greater(t, n, 0)

	var future int64
	require.NoError(t, db.Model(&models.Reservation{}).Where("reservation_time > ?", now).Count(&future).Error)
	assert.LessOrEqual(t, future, int64(15))

	var oversized int64
	require.NoError(t, db.Model(&models.Reservation{}).
		Joins("JOIN tables ON tables.id = reservations.table_id").
		Where("reservations.party_size > tables.capacity").
		Count(&oversized).Error)
	assert.Zero(t, oversized)
}

func TestSeedSamplesWithoutTables(t *testing.T) {
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	svc := services.NewReservationService(db, services.FixedClock(time.Now()), nil)
	_, err = database.SeedSamples(context.Background(), db, svc, database.SampleOptions{Upcoming: 1})
	assert.Error(t, err)
}

package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yeremiapane/dino-reserve/config"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/router"
	"github.com/yeremiapane/dino-reserve/services"
)

const testSecret = "test-admin-secret"

var testNow = time.Date(2030, time.June, 15, 12, 0, 0, 0, time.UTC)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// setupTestDB opens a private in-memory store with one restaurant and n
// tables of the given capacity.
func setupTestDB(t *testing.T, n, capacity int) (*gorm.DB, models.Restaurant, []models.Table) {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	restaurant := models.Restaurant{Name: "T-Rex Tavern", Location: "Downtown Dino District", DinoType: "trex"}
	require.NoError(t, db.Create(&restaurant).Error)
	tables := make([]models.Table, 0, n)
	for i := 1; i <= n; i++ {
		tables = append(tables, models.Table{RestaurantID: restaurant.ID, TableNumber: i, Capacity: capacity})
	}
	require.NoError(t, db.Create(&tables).Error)
	return db, restaurant, tables
}

func setupRouter(db *gorm.DB, mutate ...func(*config.Config)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.Default()
	cfg.AdminJWTSecret = testSecret
	for _, m := range mutate {
		m(&cfg)
	}
	return router.SetupRouter(db, router.Options{
		Config: cfg,
		Clock:  services.FixedClock(testNow),
	})
}

func doJSON(t *testing.T, r http.Handler, method, url string, body interface{}, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func TestGetAllRestaurants(t *testing.T) {
	db, restaurant, _ := setupTestDB(t, 2, 4)
	r := setupRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/restaurants", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Status)
	assert.Equal(t, "List of restaurants", resp.Message)

	var restaurants []models.Restaurant
	require.NoError(t, json.Unmarshal(resp.Data, &restaurants))
	require.Len(t, restaurants, 1)
	assert.Equal(t, restaurant.Name, restaurants[0].Name)
	assert.Equal(t, "trex", restaurants[0].DinoType)
}

func TestGetRestaurant(t *testing.T) {
	db, restaurant, _ := setupTestDB(t, 2, 4)
	r := setupRouter(db)

	w, resp := doJSON(t, r, http.MethodGet, "/restaurants/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var got models.Restaurant
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, restaurant.ID, got.ID)

	w, resp = doJSON(t, r, http.MethodGet, "/restaurants/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Status)
	assert.Equal(t, "Restaurant not found", resp.Message)

	w, _ = doJSON(t, r, http.MethodGet, "/restaurants/abc", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetRestaurantTables(t *testing.T) {
	db, _, tables := setupTestDB(t, 5, 4)
	svc := services.NewReservationService(db, services.FixedClock(testNow), nil)
	_, err := svc.Create(context.Background(), services.CreateReservationInput{
		TableID: tables[2].ID, CustomerName: "Lisa Bronto", Phone: "555", PartySize: 3,
		ReservationTime: testNow.Add(-time.Hour),
	})
	require.NoError(t, err)

	r := setupRouter(db)
	w, resp := doJSON(t, r, http.MethodGet, "/restaurants/1/tables", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "List of tables", resp.Message)

	var board []services.TableStatus
	require.NoError(t, json.Unmarshal(resp.Data, &board))
	require.Len(t, board, 5)
	for i, status := range board {
		assert.Equal(t, i+1, status.TableNumber)
		assert.Equal(t, i == 2, status.IsReserved, "table %d", status.TableNumber)
	}
	require.NotNil(t, board[2].CurrentReservation)
	assert.Equal(t, "Lisa Bronto", board[2].CurrentReservation.CustomerName)

	w, _ = doJSON(t, r, http.MethodGet, "/restaurants/42/tables", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

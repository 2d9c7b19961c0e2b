package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dino-reserve/config"
	"github.com/yeremiapane/dino-reserve/database"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/router"
	"github.com/yeremiapane/dino-reserve/services"
	"github.com/yeremiapane/dino-reserve/utils"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := utils.InitLogger("warn", ""); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// TestEndToEndIntegration walks the booking flow through the HTTP API:
// book a table, get refused a double booking and an oversized party,
// cancel, and see the table free again.
func TestEndToEndIntegration(t *testing.T) {
	now := time.Date(2030, time.June, 15, 10, 30, 0, 0, time.UTC)
	db := setupTestDB(t)

	cfg := config.Default()
	cfg.Timezone = "UTC"
	r := router.SetupRouter(db, router.Options{Config: cfg, Clock: services.FixedClock(now)})

	tomorrow := time.Date(2030, time.June, 16, 19, 0, 0, 0, time.UTC)
	booking := map[string]interface{}{
		"table_id":         1,
		"customer_name":    "Amanda Trike",
		"phone":            "+1-555-987-6543",
		"party_size":       2,
		"reservation_time": tomorrow.Format(time.RFC3339),
	}

	// 1. book table 1
	code, resp := call(t, r, http.MethodPost, "/reservations", booking)
	require.Equal(t, http.StatusOK, code, resp.Message)
	var res models.Reservation
	require.NoError(t, json.Unmarshal(resp.Data, &res))
	assert.Equal(t, models.StatusReserved, res.Status)

	// 2. same table, same instant
	code, resp = call(t, r, http.MethodPost, "/reservations", booking)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Table already reserved for this time", resp.Message)

	// 3. party larger than the table
	oversized := copyMap(booking)
	oversized["table_id"] = 2
	oversized["party_size"] = 5
	code, resp = call(t, r, http.MethodPost, "/reservations", oversized)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, resp.Message, "capacity (4)")

	// 4. table 1 shows as reserved
	assert.True(t, tableReserved(t, r, 1))

	// 5. cancel
	code, resp = call(t, r, http.MethodDelete, fmt.Sprintf("/reservations/%d", res.ID), nil)
	assert.Equal(t, http.StatusOK, code, resp.Message)

	// 6. table 1 is free again
	assert.False(t, tableReserved(t, r, 1))
}

// setupTestDB migrates an in-memory store and seeds one restaurant with
// five four-seat tables.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory(t.Name())
	require.NoError(t, err)

	restaurant := models.Restaurant{Name: "Stego Steakhouse", Location: "Triassic Trail", DinoType: "stego"}
	require.NoError(t, db.Create(&restaurant).Error)
	for i := 1; i <= 5; i++ {
		require.NoError(t, db.Create(&models.Table{RestaurantID: restaurant.ID, TableNumber: i, Capacity: 4}).Error)
	}
	return db
}

func call(t *testing.T, r http.Handler, method, url string, body interface{}) (int, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func tableReserved(t *testing.T, r http.Handler, tableNumber int) bool {
	t.Helper()
	code, resp := call(t, r, http.MethodGet, "/restaurants/1/tables", nil)
	require.Equal(t, http.StatusOK, code)

	var board []services.TableStatus
	require.NoError(t, json.Unmarshal(resp.Data, &board))
	require.Len(t, board, 5)
	for _, tbl := range board {
		if tbl.TableNumber == tableNumber {
			return tbl.IsReserved
		}
	}
	t.Fatalf("table %d not listed", tableNumber)
	return false
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

package feed_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/dino-reserve/feed"
	"github.com/yeremiapane/dino-reserve/models"
	"github.com/yeremiapane/dino-reserve/services"
)

func startHub(t *testing.T) (*feed.Hub, string) {
	t.Helper()
	hub := feed.NewHub()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(conn)
	}))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &msg))
	return msg
}

func TestHubPublishesReservationEvents(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(services.Event{
		Type: services.EventReservationCreated,
		Reservation: &models.Reservation{
			ID:              7,
			TableID:         3,
			CustomerName:    "James Ankylo",
			Phone:           "+1-555-0101",
			PartySize:       2,
			ReservationTime: time.Date(2030, 6, 16, 19, 0, 0, 0, time.UTC),
			Status:          models.StatusReserved,
		},
	})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := readMessage(t, conn)
		assert.Equal(t, services.EventReservationCreated, msg["event"])
		data := msg["data"].(map[string]interface{})
		assert.EqualValues(t, 7, data["id"])
		assert.EqualValues(t, 3, data["table_id"])
		assert.Equal(t, "2030-06-16T19:00:00Z", data["reservation_time"])
		assert.Equal(t, models.StatusReserved, data["status"])
		assert.NotEmpty(t, msg["sent_at"])
	}
}

func TestHubLeavesGuestDetailsOutOfEvents(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(services.Event{
		Type: services.EventReservationUpdated,
		Reservation: &models.Reservation{
			ID: 9, TableID: 1, CustomerName: "Alice Raptor", Phone: "+1-555-0000", PartySize: 4,
			Status: models.StatusCancelled,
		},
	})

	data := readMessage(t, conn)["data"].(map[string]interface{})
	assert.NotContains(t, data, "customer_name")
	assert.NotContains(t, data, "phone")
	assert.NotContains(t, data, "party_size")
	assert.Len(t, data, 4)
}

func TestHubBroadcastDoesNotWaitForStalledClient(t *testing.T) {
	hub, url := startHub(t)
	dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	// The client never reads, so its socket buffers fill and its queue backs up.
	big := strings.Repeat("x", 256*1024)
	start := time.Now()
	for i := 0; i < 200; i++ {
		hub.Broadcast(feed.Message{Event: "board_refresh", Data: big})
	}
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestHubPublishesPurgeCount(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(services.Event{Type: services.EventReservationsPurged, Count: 4})

	msg := readMessage(t, conn)
	assert.Equal(t, services.EventReservationsPurged, msg["event"])
	assert.EqualValues(t, 4, msg["data"].(map[string]interface{})["count"])
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.Close()
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubClose(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, url)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

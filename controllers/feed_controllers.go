package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/dino-reserve/feed"
	"github.com/yeremiapane/dino-reserve/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type FeedController struct {
	Hub *feed.Hub
}

func NewFeedController(hub *feed.Hub) *FeedController {
	return &FeedController{Hub: hub}
}

// FeedHandler -> GET /feed/ws
func (fc *FeedController) FeedHandler(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("feed: upgrade failed")
		return
	}

	fc.Hub.Register(ws)

	// screens only listen; reading detects the disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.Unregister(ws)
}

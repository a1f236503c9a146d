package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/testimonialhq/testimonials-backend/internal/middleware"
	"github.com/testimonialhq/testimonials-backend/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by the CORS middleware in front of the upgrade.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventController upgrades moderator connections onto the live
// moderation event feed.
type EventController struct {
	hub *ws.Hub
}

func NewEventController(hub *ws.Hub) *EventController {
	return &EventController{hub: hub}
}

// Feed upgrades the connection and streams moderation events
// GET /api/v1/moderation/events
func (ctrl *EventController) Feed(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, _ := middleware.GetUserID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade event feed connection", err, map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	client := ws.NewClient(ctrl.hub, conn, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

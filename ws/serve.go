package ws

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Serve owns an accepted connection from handshake to disconnect. A nil user
// means the handshake carried no valid token: the connection stays open but
// joins no rooms and cannot send.
//
// Presence is last-writer-wins per principal. Two simultaneous connections
// that close one will briefly look offline; known limitation, the single flag
// is not refcounted.
func (g *Gateway) Serve(ctx context.Context, conn *websocket.Conn, user *models.User) {
	c := g.hub.AddClient(conn)
	defer g.hub.RemoveClient(c)

	if user != nil {
		c.UserID = user.ID
		c.Email = strings.ToLower(user.Email)
		c.Role = user.Role

		g.hub.Join(c, UserRoom(c.UserID))
		g.hub.Join(c, EmailRoom(c.Email))

		g.setPresence(c, true)
		defer g.setPresence(c, false)
	}

	for {
		var ev inboundEvent
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			return
		}
		// Handlers run off the read loop so one slow call never stalls
		// delivery of unrelated events.
		go g.handle(ctx, c, ev)
	}
}

func (g *Gateway) setPresence(c *Client, online bool) {
	now := time.Now()
	err := storage.DB.Model(&models.User{}).
		Where("id = ?", c.UserID).
		Update("last_active_at", now).Error
	if err != nil {
		log.Printf("ws: presence update failed for user %d: %v", c.UserID, err)
	}

	g.hub.Broadcast(EmailRoom(c.Email), Event{Type: EventPresence, Data: presencePayload{
		Email:  c.Email,
		Online: online,
	}})
}

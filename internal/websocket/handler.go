package websocket

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub       *Hub
	jwtSecret []byte
}

func NewHandler(jwtSecret string) *Handler {
	hub := NewHub()
	go hub.Run()

	return &Handler{
		hub:       hub,
		jwtSecret: []byte(jwtSecret),
	}
}

func (h *Handler) Hub() *Hub {
	return h.hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleWebSocket upgrades the connection under the /ws/members namespace.
// The token is optional: anonymous clients can still join their own member
// channel, but only a valid admin token unlocks the admin audience.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	var isAdmin bool

	if tokenString := c.Query("token"); tokenString != "" {
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return h.jwtSecret, nil
		})

		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if admin, ok := claims["isAdmin"].(bool); ok {
					isAdmin = admin
				}
			}
		}
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:     h.hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		isAdmin: isAdmin,
	}

	go client.HandleClientConnection()
}

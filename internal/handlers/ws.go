package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/neonpay/neonpay-gobackend/internal/auth"
	"github.com/neonpay/neonpay-gobackend/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The payer page and the dashboard are served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub       *ws.Hub
	jwtSecret []byte
}

func NewWSHandler(hub *ws.Hub, jwtSecret []byte) *WSHandler {
	return &WSHandler{hub: hub, jwtSecret: jwtSecret}
}

// ServeWS handles GET /ws. Connecting never fails on a bad credential: a
// missing or invalid token leaves the connection up but joined to no group,
// so it receives nothing.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var userID string
	if token := r.URL.Query().Get("token"); token != "" {
		id, err := auth.ParseToken(h.jwtSecret, token)
		if err != nil {
			log.Printf("Invalid websocket token, connection not joined to a group")
		} else {
			userID = id
		}
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed: %v", err)
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	go client.Serve()
}

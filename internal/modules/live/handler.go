package live

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewHandler builds the WebSocket endpoint. An empty origin list or "*"
// accepts any origin.
func NewHandler(hub *Hub, allowedOrigins []string) *Handler {
	return &Handler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/ws/classes", h.Subscribe)
}

// Subscribe upgrades the request and streams slot updates.
//
// Endpoint: GET /ws/classes?class_id=A&class_id=B
//
// Without class_id the client receives updates for every class.
//
// @Summary Live slot updates
// @Tags Live
// @Param class_id query []string false "Classes to follow"
// @Success 101 "Switching Protocols"
// @Router /ws/classes [get]
func (h *Handler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws_upgrade_failed remote=%s error=%q", c.ClientIP(), err.Error())
		return
	}
	h.hub.Serve(conn, c.QueryArray("class_id"))
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = true
		}
	}
	if len(set) == 0 {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

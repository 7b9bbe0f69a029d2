// handlers/websocket.go
package geo

import (
	"log"
	"net/http"

	"github.com/evn/toopath_backendl/internal/middleware"
	"github.com/evn/toopath_backendl/internal/pkg/messages"
	"github.com/evn/toopath_backendl/internal/pkg/response"
	geoService "github.com/evn/toopath_backendl/internal/services/geo"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Positions — live-поток принятых позиций. Клиент только слушает:
// каждое принятое обновление actual location приходит JSON-сообщением.
func (h *GeoTrackHandler) Positions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, messages.Get("not_authenticated"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Не удалось установить websocket для пользователя %d: %v", userID, err)
		return
	}

	client := &geoService.Client{
		Conn:   conn,
		Send:   make(chan []byte, 256),
		UserID: userID,
	}
	h.hub.Register(client)

	go h.hub.WritePump(client)
	h.hub.ReadPump(client)
}

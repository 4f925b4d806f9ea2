package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"aniwatch-api/internal/logging"
	"aniwatch-api/internal/watchparty"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	maxRoomIDLength = 64
	maxGuestName    = 50
)

type WatchPartyHandler struct {
	hub      *watchparty.Hub
	upgrader websocket.Upgrader
}

// NewWatchPartyHandler accepts upgrades from the given origins. A "*" entry,
// or an empty list, allows any origin.
func NewWatchPartyHandler(hub *watchparty.Hub, origins []string) *WatchPartyHandler {
	allowAll := len(origins) == 0
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &WatchPartyHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowAll {
					return true
				}
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
		},
	}
}

// @Summary Watch party room (WebSocket)
// @Description First connection hosts. Messages: state, report, chat in; welcome, members, host, state, sync, chat, error out.
// @Tags watch-party
// @Param roomId path string true "room id (max 64 chars)"
// @Param name query string false "display name"
// @Success 101
// @Failure 400 {object} ErrorResponse
// @Router /ws/watch-party/{roomId} [get]
func (h *WatchPartyHandler) Serve(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" || len(roomID) > maxRoomIDLength {
		writeStatus(w, http.StatusBadRequest, "invalid_input", "roomId must be 1..64 characters")
		return
	}
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		name = "guest"
	}
	if utf8.RuneCountInString(name) > maxGuestName {
		name = string([]rune(name)[:maxGuestName])
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("[watchparty] upgrade failed")
		return
	}
	h.hub.Serve(conn, roomID, name)
}

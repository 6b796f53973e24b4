package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"behavior-call/internal/game"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// envelope is the wire shape of every broadcast frame.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// wsHub fans room-scoped events out to subscribed connections, keyed by
// join code. A single mutex serializes publishes per hub, which keeps
// delivery order aligned with publish order for each room channel.
type wsHub struct {
	mu     sync.Mutex
	rooms  map[string]map[*websocket.Conn]struct{}
	logger *zap.Logger
}

func newWSHub(logger *zap.Logger) *wsHub {
	return &wsHub{
		rooms:  make(map[string]map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

func (h *wsHub) Subscribe(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[code]
	if group == nil {
		group = make(map[*websocket.Conn]struct{})
		h.rooms[code] = group
	}
	group[conn] = struct{}{}
}

func (h *wsHub) Unsubscribe(code string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	group := h.rooms[code]
	if group == nil {
		return
	}
	delete(group, conn)
	_ = conn.Close()
	if len(group) == 0 {
		delete(h.rooms, code)
	}
}

func (h *wsHub) Publish(code, event string, payload any) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("broadcast marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.rooms[code] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.rooms[code], conn)
			_ = conn.Close()
		}
	}
}

// lobbyHub mirrors wsHub for the single global lobby channel.
type lobbyHub struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]string
	logger *zap.Logger
}

func newLobbyHub(logger *zap.Logger) *lobbyHub {
	return &lobbyHub{
		conns:  make(map[*websocket.Conn]string),
		logger: logger,
	}
}

func (h *lobbyHub) Add(conn *websocket.Conn, playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = playerID
}

func (h *lobbyHub) Remove(conn *websocket.Conn) (playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	playerID = h.conns[conn]
	delete(h.conns, conn)
	_ = conn.Close()
	return playerID
}

func (h *lobbyHub) Broadcast(event string, payload any) {
	data, err := json.Marshal(envelope{Event: event, Data: payload})
	if err != nil {
		h.logger.Error("lobby marshal failed", zap.String("event", event), zap.Error(err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.conns, conn)
			_ = conn.Close()
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (s *Server) handleRoomWebsocket(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	room, err := s.coord.Room(code)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.logger.Info("ws connected", zap.String("code", room.Code), zap.String("remote", r.RemoteAddr))
	s.ws.Subscribe(room.Code, conn)
	frame, _ := json.Marshal(envelope{Event: game.EventRoomUpdated, Data: room})
	_ = conn.WriteMessage(websocket.TextMessage, frame)
	go s.readRoomWS(room.Code, conn)
}

func (s *Server) readRoomWS(code string, conn *websocket.Conn) {
	defer s.ws.Unsubscribe(code, conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.logger.Info("ws disconnected", zap.String("code", code), zap.Error(err))
			return
		}
	}
}

// handleLobbyWebsocket tracks presence: connecting marks the player
// online and rebroadcasts the lobby roster, disconnecting marks them
// offline again.
func (s *Server) handleLobbyWebsocket(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		writeError(w, http.StatusBadRequest, "player_id is required")
		return
	}
	if _, err := s.players.FindPlayer(playerID); err != nil {
		writeGameError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	if err := s.players.SetPresence(playerID, true, r.RemoteAddr); err != nil {
		s.logger.Warn("set presence failed", zap.String("player_id", playerID), zap.Error(err))
	}
	s.lobby.Add(conn, playerID)
	s.broadcastLobbyRoster()
	go s.readLobbyWS(conn)
}

func (s *Server) readLobbyWS(conn *websocket.Conn) {
	defer func() {
		playerID := s.lobby.Remove(conn)
		if playerID != "" {
			if err := s.players.SetPresence(playerID, false, ""); err != nil {
				s.logger.Warn("clear presence failed", zap.String("player_id", playerID), zap.Error(err))
			}
		}
		s.broadcastLobbyRoster()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) broadcastLobbyRoster() {
	online, err := s.players.OnlinePlayers()
	if err != nil {
		s.logger.Warn("list online players failed", zap.Error(err))
		return
	}
	s.lobby.Broadcast(game.EventLobbyPlayersUpdated, onlinePlayersPayload(online))
}

func onlinePlayersPayload(players []game.Player) []map[string]any {
	payload := make([]map[string]any, 0, len(players))
	for _, player := range players {
		payload = append(payload, map[string]any{
			"id":   player.ID,
			"name": player.Name,
		})
	}
	return payload
}

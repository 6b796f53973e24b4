package server

import (
	"net/http"

	"behavior-call/internal/config"
	"behavior-call/internal/game"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Server wires the session coordinator to HTTP and websocket clients.
// When conn is nil the server runs entirely in memory, which is how the
// tests exercise it.
type Server struct {
	coord   *game.Coordinator
	players Directory
	db      *gorm.DB
	ws      *wsHub
	lobby   *lobbyHub
	bus     game.Broadcaster
	cfg     config.Config
	logger  *zap.Logger
}

func New(conn *gorm.DB, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	var players Directory
	if conn != nil {
		players = newPlayerStore(conn)
	} else {
		players = game.NewMemoryDirectory()
	}
	srv := &Server{
		players: players,
		db:      conn,
		ws:      newWSHub(logger),
		lobby:   newLobbyHub(logger),
		cfg:     cfg,
		logger:  logger,
	}
	bus := &eventBus{server: srv}
	srv.bus = bus
	srv.coord = game.New(game.NewStore(), players, bus, logger, game.Options{
		ObservationMS: cfg.ObservationMS,
		WinnerReward:  cfg.WinnerReward,
	})
	return srv
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/verify", s.handleVerify)
	mux.HandleFunc("POST /api/players", s.handleCreatePlayer)
	mux.HandleFunc("GET /api/players/online", s.handleOnlinePlayers)
	mux.HandleFunc("GET /api/players/{id}", s.handleGetPlayer)
	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("GET /api/rooms/{code}", s.handleGetRoom)
	mux.HandleFunc("GET /api/rooms/{code}/qr", s.handleRoomQR)
	mux.HandleFunc("POST /api/rooms/{code}/join", s.handleJoinRoom)
	mux.HandleFunc("PUT /api/rooms/{code}/ready", s.handleSetReady)
	mux.HandleFunc("POST /api/rooms/{code}/leave", s.handleLeaveRoom)
	mux.HandleFunc("POST /api/rounds", s.handleCreateRound)
	mux.HandleFunc("GET /api/rounds/{id}", s.handleGetRound)
	mux.HandleFunc("PUT /api/rounds/{id}/phase", s.handleAdvancePhase)
	mux.HandleFunc("POST /api/predictions", s.handleCreatePrediction)
	mux.HandleFunc("GET /api/predictions/round/{roundId}", s.handlePredictionsByRound)
	mux.HandleFunc("GET /api/predictions/round/{roundId}/player/{playerId}", s.handlePredictionByPlayer)
	mux.HandleFunc("PUT /api/predictions/{id}/happened", s.handleResolveHappened)
	mux.HandleFunc("GET /ws/rooms/{code}", s.handleRoomWebsocket)
	mux.HandleFunc("GET /ws/lobby", s.handleLobbyWebsocket)
	return mux
}

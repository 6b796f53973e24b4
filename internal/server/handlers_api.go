package server

import (
	"net/http"
	"time"

	"behavior-call/internal/game"

	"go.uber.org/zap"
)

type createRoomRequest struct {
	HostID string `json:"hostId"`
}

type joinRoomRequest struct {
	PlayerID string `json:"playerId"`
}

type readyRequest struct {
	PlayerID string `json:"playerId"`
	IsReady  bool   `json:"isReady"`
}

type leaveRoomRequest struct {
	PlayerID string `json:"playerId"`
}

type createRoundRequest struct {
	RoomCode string `json:"roomCode"`
}

type phaseRequest struct {
	Phase string `json:"phase"`
}

type createPredictionRequest struct {
	RoundID     string `json:"roundId"`
	PredictorID string `json:"predictorId"`
	TargetID    string `json:"targetId"`
	Text        string `json:"text"`
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "host id is required")
		return
	}
	room, err := s.coord.CreateRoom(req.HostID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.persistRoom(room)
	writeJSON(w, http.StatusCreated, room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.coord.Room(r.PathValue("code"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req joinRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player id is required")
		return
	}
	room, err := s.coord.JoinRoom(r.PathValue("code"), req.PlayerID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.persistRoom(room)
	writeJSON(w, http.StatusOK, room)
}

func (s *Server) handleSetReady(w http.ResponseWriter, r *http.Request) {
	var req readyRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player id is required")
		return
	}
	room, allReady, err := s.coord.SetReady(r.PathValue("code"), req.PlayerID, req.IsReady)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.persistRoom(room)
	if allReady {
		s.bus.Publish(room.Code, "all-players-ready", map[string]any{"code": room.Code})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"room":     room,
		"allReady": allReady,
	})
}

func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	var req leaveRoomRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "player id is required")
		return
	}
	code := r.PathValue("code")
	result, err := s.coord.LeaveRoom(code, req.PlayerID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if result.Closed {
		s.persistRoomClosed(result.Room.Code)
		writeJSON(w, http.StatusOK, map[string]string{"message": "Room closed"})
		return
	}
	s.persistRoom(result.Room)
	writeJSON(w, http.StatusOK, result.Room)
}

func (s *Server) handleCreateRound(w http.ResponseWriter, r *http.Request) {
	var req createRoundRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "room code is required")
		return
	}
	round, err := s.coord.CreateRound(req.RoomCode)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.persistRound(round)
	if room, roomErr := s.coord.Room(round.RoomCode); roomErr == nil {
		s.persistRoom(room)
	}
	writeJSON(w, http.StatusCreated, round)
}

func (s *Server) handleGetRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.coord.Round(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleAdvancePhase(w http.ResponseWriter, r *http.Request) {
	var req phaseRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "phase is required")
		return
	}
	round, err := s.coord.AdvancePhase(r.PathValue("id"), req.Phase)
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.persistPhase(round)
	writeJSON(w, http.StatusOK, round)
}

func (s *Server) handleCreatePrediction(w http.ResponseWriter, r *http.Request) {
	var req createPredictionRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "all fields are required")
		return
	}
	text, err := validatePredictionText(req.Text)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Text = text
	prediction, err := s.coord.CreatePrediction(game.CreatePredictionInput{
		RoundID:     req.RoundID,
		PredictorID: req.PredictorID,
		TargetID:    req.TargetID,
		Text:        req.Text,
	})
	if err != nil {
		writeGameError(w, err)
		return
	}
	s.persistPrediction(prediction)
	writeJSON(w, http.StatusCreated, predictionPayload(prediction))
}

func (s *Server) handlePredictionsByRound(w http.ResponseWriter, r *http.Request) {
	predictions, err := s.coord.PredictionsByRound(r.PathValue("roundId"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(predictions))
	for _, prediction := range predictions {
		payload = append(payload, predictionViewPayload(prediction))
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handlePredictionByPlayer(w http.ResponseWriter, r *http.Request) {
	prediction, err := s.coord.PredictionByPlayer(r.PathValue("roundId"), r.PathValue("playerId"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictionViewPayload(prediction))
}

func (s *Server) handleResolveHappened(w http.ResponseWriter, r *http.Request) {
	result, err := s.coord.ResolveHappened(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	if !result.IsWinner {
		writeJSON(w, http.StatusOK, map[string]any{
			"isWinner":   false,
			"winnerId":   result.WinnerID,
			"winnerName": result.WinnerName,
			"message":    "Round already won by another player",
		})
		return
	}
	s.persistWinner(result, time.Now().UTC())
	s.logger.Info("round resolved",
		zap.String("round_id", result.Prediction.RoundID),
		zap.String("winner_id", result.WinnerID),
	)
	payload := predictionPayload(result.Prediction)
	payload["isWinner"] = true
	payload["totalScore"] = result.TotalScore
	writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	player, err := s.players.CreatePlayer(name)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, playerPayload(player))
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.players.FindPlayer(r.PathValue("id"))
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, playerPayload(player))
}

func (s *Server) handleOnlinePlayers(w http.ResponseWriter, r *http.Request) {
	online, err := s.players.OnlinePlayers()
	if err != nil {
		writeGameError(w, err)
		return
	}
	payload := make([]map[string]any, 0, len(online))
	for _, player := range online {
		payload = append(payload, playerPayload(player))
	}
	writeJSON(w, http.StatusOK, payload)
}

func playerPayload(player game.Player) map[string]any {
	payload := map[string]any{
		"id":       player.ID,
		"name":     player.Name,
		"isOnline": player.Online,
		"score":    player.Score,
	}
	if player.CurrentRoom != "" {
		payload["currentRoomCode"] = player.CurrentRoom
	}
	return payload
}

func predictionPayload(prediction game.Prediction) map[string]any {
	return map[string]any{
		"id":          prediction.ID,
		"roundId":     prediction.RoundID,
		"predictorId": prediction.PredictorID,
		"targetId":    prediction.TargetID,
		"text":        prediction.Text,
		"happened":    prediction.Happened,
		"points":      prediction.Points,
		"createdAt":   prediction.CreatedAt,
	}
}

func predictionViewPayload(view game.PredictionView) map[string]any {
	payload := predictionPayload(view.Prediction)
	payload["predictorName"] = view.PredictorName
	payload["targetName"] = view.TargetName
	return payload
}

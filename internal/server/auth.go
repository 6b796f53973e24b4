package server

import (
	"net/http"
	"strings"
	"time"

	"behavior-call/internal/game"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type loginRequest struct {
	Name string `json:"name"`
}

// handleLogin registers or reuses a guest player by display name. A
// name that is currently online belongs to someone else and is
// rejected, which is the only duplicate check the lobby needs.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	player, found, err := s.players.FindByName(name)
	if err != nil {
		writeGameError(w, err)
		return
	}
	if found && player.Online {
		writeError(w, http.StatusConflict, "this username is already taken, choose a different name")
		return
	}
	if !found {
		player, err = s.players.CreatePlayer(name)
		if err != nil {
			writeGameError(w, err)
			return
		}
	} else if err := s.players.SetPresence(player.ID, true, ""); err != nil {
		writeGameError(w, err)
		return
	}

	token, err := s.signToken(player)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	s.logger.Info("player logged in", zap.String("player_id", player.ID), zap.String("name", player.Name))
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"player": map[string]any{
			"id":   player.ID,
			"name": player.Name,
		},
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" || raw == r.Header.Get("Authorization") {
		writeError(w, http.StatusUnauthorized, "no token provided")
		return
	}
	playerID, err := s.parseToken(raw)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	player, err := s.players.FindPlayer(playerID)
	if err != nil {
		writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"player": map[string]any{
			"id":   player.ID,
			"name": player.Name,
		},
	})
}

func (s *Server) signToken(player game.Player) (string, error) {
	claims := jwt.MapClaims{
		"playerId": player.ID,
		"name":     player.Name,
		"exp":      time.Now().Add(time.Duration(s.cfg.TokenTTLHours) * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(token *jwt.Token) (any, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", jwt.ErrTokenInvalidClaims
	}
	playerID, ok := claims["playerId"].(string)
	if !ok || playerID == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return playerID, nil
}

package server

import (
	"encoding/json"
	"time"

	"behavior-call/internal/db"
	"behavior-call/internal/game"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"
)

// eventBus is the Broadcaster handed to the coordinator: every publish
// reaches the room's websocket subscribers and lands in the events
// table for replay and debugging.
type eventBus struct {
	server *Server
}

func (b *eventBus) Publish(channel, event string, payload any) {
	b.server.ws.Publish(channel, event, payload)
	if err := b.server.persistEvent(channel, event, payload); err != nil {
		b.server.logger.Warn("persist event failed",
			zap.String("channel", channel),
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func (s *Server) persistEvent(code, eventType string, payload any) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		RoomCode: code,
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func (s *Server) persistRoom(view game.RoomView) {
	if s.db == nil {
		return
	}
	record := db.Room{
		Code:   view.Code,
		HostID: view.HostID,
		Status: view.Status,
	}
	if view.CurrentRoundID != "" {
		record.CurrentRoundID = &view.CurrentRoundID
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"host_id", "status", "current_round_id", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		s.logger.Warn("persist room failed", zap.String("code", view.Code), zap.Error(err))
		return
	}
	if err := s.db.Where("room_code = ?", view.Code).Delete(&db.RoomMember{}).Error; err != nil {
		s.logger.Warn("persist members failed", zap.String("code", view.Code), zap.Error(err))
		return
	}
	for i, member := range view.Members {
		entry := db.RoomMember{
			RoomCode: view.Code,
			PlayerID: member.PlayerID,
			IsReady:  member.Ready,
			Position: i,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			s.logger.Warn("persist member failed", zap.String("code", view.Code), zap.Error(err))
			return
		}
	}
}

func (s *Server) persistRoomClosed(code string) {
	if s.db == nil {
		return
	}
	if err := s.db.Where("room_code = ?", code).Delete(&db.RoomMember{}).Error; err != nil {
		s.logger.Warn("delete members failed", zap.String("code", code), zap.Error(err))
	}
	if err := s.db.Delete(&db.Room{}, "code = ?", code).Error; err != nil {
		s.logger.Warn("delete room failed", zap.String("code", code), zap.Error(err))
	}
}

func (s *Server) persistRound(view game.RoundView) {
	if s.db == nil {
		return
	}
	record := db.Round{
		ID:            view.ID,
		RoomCode:      view.RoomCode,
		Number:        view.Number,
		Phase:         view.Phase,
		ObservationMS: view.ObservationMS,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		s.logger.Warn("persist round failed", zap.String("round_id", view.ID), zap.Error(err))
		return
	}
	for _, assignment := range view.Assignments {
		entry := db.Assignment{
			RoundID:  view.ID,
			PlayerID: assignment.PlayerID,
			TargetID: assignment.TargetID,
		}
		if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry).Error; err != nil {
			s.logger.Warn("persist assignment failed", zap.String("round_id", view.ID), zap.Error(err))
			return
		}
	}
}

func (s *Server) persistPhase(view game.RoundView) {
	if s.db == nil {
		return
	}
	updates := map[string]any{"phase": view.Phase}
	if view.ObservationStartedAt != nil {
		updates["observation_started_at"] = *view.ObservationStartedAt
	}
	if err := s.db.Model(&db.Round{}).Where("id = ?", view.ID).Updates(updates).Error; err != nil {
		s.logger.Warn("persist phase failed", zap.String("round_id", view.ID), zap.Error(err))
	}
}

func (s *Server) persistPrediction(prediction game.Prediction) {
	if s.db == nil {
		return
	}
	record := db.Prediction{
		ID:          prediction.ID,
		RoundID:     prediction.RoundID,
		PredictorID: prediction.PredictorID,
		TargetID:    prediction.TargetID,
		Text:        prediction.Text,
	}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error; err != nil {
		s.logger.Warn("persist prediction failed", zap.String("prediction_id", prediction.ID), zap.Error(err))
	}
}

// persistWinner mirrors the store's winner claim into Postgres with the
// same conditional shape: the row is updated only while winner_id is
// still null, so a crashed-and-restored process cannot overwrite a
// settled round.
func (s *Server) persistWinner(result game.ResolveResult, completedAt time.Time) {
	if s.db == nil {
		return
	}
	updates := map[string]any{
		"winner_id":    result.WinnerID,
		"phase":        game.PhaseCompleted,
		"completed_at": completedAt,
	}
	outcome := s.db.Model(&db.Round{}).
		Where("id = ? AND winner_id IS NULL", result.Prediction.RoundID).
		Updates(updates)
	if outcome.Error != nil {
		s.logger.Warn("persist winner failed", zap.String("round_id", result.Prediction.RoundID), zap.Error(outcome.Error))
		return
	}
	if outcome.RowsAffected == 0 {
		return
	}
	err := s.db.Model(&db.Prediction{}).
		Where("id = ?", result.Prediction.ID).
		Updates(map[string]any{"happened": true, "points": result.Prediction.Points}).Error
	if err != nil {
		s.logger.Warn("persist prediction outcome failed", zap.String("prediction_id", result.Prediction.ID), zap.Error(err))
	}
}

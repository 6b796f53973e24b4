package game

import "go.uber.org/zap"

// CreateRound starts the next round for a room. The assignment is a
// cyclic shift by one over the current membership order: with members
// P0..P(n-1), Pi observes P((i+1) mod n). For n >= 2 that is always a
// single-cycle derangement, so nobody observes themself; rooms with
// fewer than two members have no valid target and are rejected.
func (c *Coordinator) CreateRound(code string) (RoundView, error) {
	round, err := c.store.CreateRound(code, func(room *Room, number int) (*Round, error) {
		if room.Status == RoomFinished {
			return nil, conflictErrorf("room is finished")
		}
		if len(room.Members) < 2 {
			return nil, conflictErrorf("at least two players are required to start a round")
		}
		assignments := make([]Assignment, 0, len(room.Members))
		for i, m := range room.Members {
			target := room.Members[(i+1)%len(room.Members)]
			assignments = append(assignments, Assignment{
				PlayerID: m.PlayerID,
				TargetID: target.PlayerID,
			})
		}
		return &Round{
			RoomCode:      room.Code,
			Number:        number,
			Assignments:   assignments,
			Phase:         PhasePrediction,
			ObservationMS: c.observationMS,
			CreatedAt:     timeNowUTC(),
		}, nil
	})
	if err != nil {
		return RoundView{}, err
	}
	c.logger.Info("round started",
		zap.String("code", round.RoomCode),
		zap.String("round_id", round.ID),
		zap.Int("number", round.Number),
	)
	c.bus.Publish(round.RoomCode, EventRoundStarted, map[string]any{"roundId": round.ID})
	c.bus.Publish(round.RoomCode, EventRoomUpdated, c.mustRoomView(round.RoomCode))
	return c.roundView(round), nil
}

// Round returns the client-facing view of a round.
func (c *Coordinator) Round(id string) (RoundView, error) {
	round, ok := c.store.GetRound(id)
	if !ok {
		return RoundView{}, notFoundErrorf("round not found")
	}
	return c.roundView(round), nil
}

// AdvancePhase moves a round forward through prediction, observation,
// reveal and completed. Backward or repeated phases are rejected. The
// first entry into observation stamps the start time.
func (c *Coordinator) AdvancePhase(id, phase string) (RoundView, error) {
	next, known := phaseOrder[phase]
	if !known {
		return RoundView{}, validationErrorf("unknown phase %q", phase)
	}
	round, err := c.store.UpdateRound(id, func(round *Round) error {
		current := phaseOrder[round.Phase]
		if next <= current {
			return conflictErrorf("cannot move phase from %s to %s", round.Phase, phase)
		}
		round.Phase = phase
		if phase == PhaseObservation && round.ObservationStartedAt.IsZero() {
			round.ObservationStartedAt = timeNowUTC()
		}
		if phase == PhaseCompleted && round.CompletedAt.IsZero() {
			round.CompletedAt = timeNowUTC()
		}
		return nil
	})
	if err != nil {
		return RoundView{}, err
	}
	c.logger.Info("phase updated",
		zap.String("round_id", round.ID),
		zap.String("phase", round.Phase),
	)
	c.bus.Publish(round.RoomCode, EventPhaseUpdated, map[string]any{
		"phase":   round.Phase,
		"roundId": round.ID,
	})
	return c.roundView(round), nil
}

func (c *Coordinator) mustRoomView(code string) RoomView {
	room, ok := c.store.GetRoom(code)
	if !ok {
		return RoomView{Code: normalizeCode(code)}
	}
	return c.roomView(room)
}

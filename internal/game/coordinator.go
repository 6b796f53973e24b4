// Package game implements the session coordinator for Behavior Call:
// room membership and readiness, the round phase state machine, the
// target-assignment permutation, and the exactly-one-winner prediction
// resolution. State changes fan out through an injected Broadcaster
// keyed by room code.
package game

import (
	"time"

	"go.uber.org/zap"
)

type Options struct {
	// ObservationMS overrides the default observation phase duration.
	ObservationMS int
	// WinnerReward overrides the points awarded to the round winner.
	WinnerReward int
}

// Coordinator owns the canonical session state and is the single
// logical publisher for each room's event stream.
type Coordinator struct {
	store         *Store
	players       PlayerDirectory
	bus           Broadcaster
	logger        *zap.Logger
	observationMS int
	reward        int
}

func New(store *Store, players PlayerDirectory, bus Broadcaster, logger *zap.Logger, opts Options) *Coordinator {
	if store == nil {
		store = NewStore()
	}
	if bus == nil {
		bus = NopBroadcaster{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	observationMS := opts.ObservationMS
	if observationMS <= 0 {
		observationMS = DefaultObservationMS
	}
	reward := opts.WinnerReward
	if reward <= 0 {
		reward = DefaultWinnerReward
	}
	return &Coordinator{
		store:         store,
		players:       players,
		bus:           bus,
		logger:        logger,
		observationMS: observationMS,
		reward:        reward,
	}
}

func (c *Coordinator) roomView(room Room) RoomView {
	view := RoomView{
		Code:           room.Code,
		HostID:         room.HostID,
		Status:         room.Status,
		CurrentRoundID: room.CurrentRoundID,
		Members:        make([]MemberView, 0, len(room.Members)),
	}
	for _, m := range room.Members {
		entry := MemberView{PlayerID: m.PlayerID, Ready: m.Ready}
		if player, err := c.players.FindPlayer(m.PlayerID); err == nil {
			entry.Name = player.Name
			entry.Online = player.Online
		}
		view.Members = append(view.Members, entry)
	}
	if host, err := c.players.FindPlayer(room.HostID); err == nil {
		view.HostName = host.Name
	}
	return view
}

func (c *Coordinator) roundView(round Round) RoundView {
	view := RoundView{
		ID:            round.ID,
		RoomCode:      round.RoomCode,
		Number:        round.Number,
		Phase:         round.Phase,
		ObservationMS: round.ObservationMS,
		WinnerID:      round.WinnerID,
		Assignments:   make([]AssignmentView, 0, len(round.Assignments)),
	}
	if !round.ObservationStartedAt.IsZero() {
		at := round.ObservationStartedAt
		view.ObservationStartedAt = &at
	}
	if !round.CompletedAt.IsZero() {
		at := round.CompletedAt
		view.CompletedAt = &at
	}
	for _, a := range round.Assignments {
		entry := AssignmentView{PlayerID: a.PlayerID, TargetID: a.TargetID}
		if player, err := c.players.FindPlayer(a.PlayerID); err == nil {
			entry.PlayerName = player.Name
		}
		if target, err := c.players.FindPlayer(a.TargetID); err == nil {
			entry.TargetName = target.Name
		}
		view.Assignments = append(view.Assignments, entry)
	}
	return view
}

func (c *Coordinator) predictionView(prediction Prediction) PredictionView {
	view := PredictionView{Prediction: prediction}
	if player, err := c.players.FindPlayer(prediction.PredictorID); err == nil {
		view.PredictorName = player.Name
	}
	if target, err := c.players.FindPlayer(prediction.TargetID); err == nil {
		view.TargetName = target.Name
	}
	return view
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}

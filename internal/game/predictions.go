package game

import (
	"strings"

	"go.uber.org/zap"
)

// CreatePredictionInput carries a prediction submission. Target is the
// member the predictor claims the behavior about.
type CreatePredictionInput struct {
	RoundID     string
	PredictorID string
	TargetID    string
	Text        string
}

// CreatePrediction records a prediction for a round during play. The
// predictor must hold an assignment in the round; the submitted target
// is deliberately not checked against that assignment, matching how the
// game has always behaved (players may gossip about anyone, only the
// assigned target tends to be observable). One prediction per player
// per round is the resolvable one, so duplicates conflict.
func (c *Coordinator) CreatePrediction(input CreatePredictionInput) (Prediction, error) {
	text := strings.TrimSpace(input.Text)
	switch {
	case input.RoundID == "":
		return Prediction{}, validationErrorf("round id is required")
	case input.PredictorID == "":
		return Prediction{}, validationErrorf("predictor id is required")
	case input.TargetID == "":
		return Prediction{}, validationErrorf("target id is required")
	case text == "":
		return Prediction{}, validationErrorf("prediction text is required")
	}
	prediction, err := c.store.CreatePrediction(input.RoundID, func(round *Round) (*Prediction, error) {
		if _, ok := round.TargetFor(input.PredictorID); !ok {
			return nil, notFoundErrorf("player is not part of this round")
		}
		return &Prediction{
			RoundID:     round.ID,
			PredictorID: input.PredictorID,
			TargetID:    input.TargetID,
			Text:        text,
			CreatedAt:   timeNowUTC(),
		}, nil
	})
	if err != nil {
		return Prediction{}, err
	}
	round, _ := c.store.GetRound(prediction.RoundID)
	c.logger.Info("prediction submitted",
		zap.String("round_id", prediction.RoundID),
		zap.String("player_id", prediction.PredictorID),
	)
	c.bus.Publish(round.RoomCode, EventPredictionSubmitted, map[string]any{
		"playerId": prediction.PredictorID,
	})
	return prediction, nil
}

// PredictionsByRound lists a round's predictions with resolved names.
func (c *Coordinator) PredictionsByRound(roundID string) ([]PredictionView, error) {
	if _, ok := c.store.GetRound(roundID); !ok {
		return nil, notFoundErrorf("round not found")
	}
	list := c.store.PredictionsByRound(roundID)
	views := make([]PredictionView, 0, len(list))
	for _, prediction := range list {
		views = append(views, c.predictionView(prediction))
	}
	return views, nil
}

// PredictionByPlayer returns the prediction a player submitted in a
// round.
func (c *Coordinator) PredictionByPlayer(roundID, playerID string) (PredictionView, error) {
	for _, prediction := range c.store.PredictionsByRound(roundID) {
		if prediction.PredictorID == playerID {
			return c.predictionView(prediction), nil
		}
	}
	return PredictionView{}, notFoundErrorf("prediction not found")
}

// ResolveHappened reports that a predicted behavior actually happened
// and settles the round. The winner claim is a conditional update on
// the store: the winner field is set only if currently unset, inside
// one critical section, so of two concurrent resolvers exactly one
// wins. Losing that race is a normal outcome; the loser gets the
// existing winner back and nothing else changes.
func (c *Coordinator) ResolveHappened(predictionID string) (ResolveResult, error) {
	prediction, ok := c.store.GetPrediction(predictionID)
	if !ok {
		return ResolveResult{}, notFoundErrorf("prediction not found")
	}
	round, ok := c.store.GetRound(prediction.RoundID)
	if !ok {
		return ResolveResult{}, notFoundErrorf("round not found")
	}

	claimed, winnerID, err := c.store.ClaimWinner(round.ID, prediction.PredictorID, timeNowUTC())
	if err != nil {
		return ResolveResult{}, err
	}
	if !claimed {
		result := ResolveResult{Prediction: prediction, WinnerID: winnerID}
		if winner, err := c.players.FindPlayer(winnerID); err == nil {
			result.WinnerName = winner.Name
		}
		return result, nil
	}

	total, err := c.players.IncrementScore(prediction.PredictorID, c.reward)
	if err != nil {
		c.logger.Error("score increment failed",
			zap.String("player_id", prediction.PredictorID),
			zap.Error(err),
		)
	}
	prediction, err = c.store.UpdatePrediction(predictionID, func(prediction *Prediction) error {
		prediction.Happened = true
		prediction.Points = c.reward
		return nil
	})
	if err != nil {
		return ResolveResult{}, err
	}

	result := ResolveResult{
		Prediction: prediction,
		IsWinner:   true,
		WinnerID:   prediction.PredictorID,
		TotalScore: total,
	}
	if winner, findErr := c.players.FindPlayer(prediction.PredictorID); findErr == nil {
		result.WinnerName = winner.Name
	}
	c.logger.Info("round won",
		zap.String("round_id", round.ID),
		zap.String("winner_id", result.WinnerID),
		zap.Int("points", c.reward),
	)
	c.bus.Publish(round.RoomCode, EventPredictionMarked, map[string]any{
		"predictionId": prediction.ID,
	})
	c.bus.Publish(round.RoomCode, EventRoundWon, map[string]any{
		"winnerId":   result.WinnerID,
		"winnerName": result.WinnerName,
		"roundId":    round.ID,
	})
	return result, nil
}

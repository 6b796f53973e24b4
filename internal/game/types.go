package game

import "time"

const (
	RoomWaiting    = "waiting"
	RoomInProgress = "in-progress"
	RoomFinished   = "finished"
)

const (
	PhasePrediction  = "prediction"
	PhaseObservation = "observation"
	PhaseReveal      = "reveal"
	PhaseCompleted   = "completed"
)

// DefaultObservationMS is how long the observation phase is expected to
// last. The value is informational; phase changes are always driven by
// client signals, never by server timers.
const DefaultObservationMS = 300000

// DefaultWinnerReward is the score awarded to the round winner.
const DefaultWinnerReward = 10

var phaseOrder = map[string]int{
	PhasePrediction:  0,
	PhaseObservation: 1,
	PhaseReveal:      2,
	PhaseCompleted:   3,
}

// Player is the directory's view of a connected guest. Scores only ever
// go up.
type Player struct {
	ID          string
	Name        string
	Online      bool
	SocketRef   string
	Score       int
	CurrentRoom string
	CreatedAt   time.Time
}

// Member is one membership entry in a room, in join order.
type Member struct {
	PlayerID string
	Ready    bool
}

// Room is a joinable session instance identified by a short code.
type Room struct {
	Code           string
	HostID         string
	Members        []Member
	Status         string
	CurrentRoundID string
	CreatedAt      time.Time

	// readySignaled dedupes the all-ready notification within one
	// stabilization; it resets whenever the all-ready condition breaks.
	readySignaled bool
}

func (r *Room) member(playerID string) *Member {
	for i := range r.Members {
		if r.Members[i].PlayerID == playerID {
			return &r.Members[i]
		}
	}
	return nil
}

func (r *Room) allReady() bool {
	if len(r.Members) < 2 {
		return false
	}
	for _, m := range r.Members {
		if !m.Ready {
			return false
		}
	}
	return true
}

// Assignment maps a player to the member they observe this round.
type Assignment struct {
	PlayerID string
	TargetID string
}

// Round is one play cycle within a room.
type Round struct {
	ID                   string
	RoomCode             string
	Number               int
	Assignments          []Assignment
	Phase                string
	ObservationStartedAt time.Time
	ObservationMS        int
	WinnerID             string
	CompletedAt          time.Time
	CreatedAt            time.Time
}

// TargetFor returns the target assigned to playerID this round.
func (r *Round) TargetFor(playerID string) (string, bool) {
	for _, a := range r.Assignments {
		if a.PlayerID == playerID {
			return a.TargetID, true
		}
	}
	return "", false
}

// Prediction is a player's claim about what their target will do.
type Prediction struct {
	ID          string
	RoundID     string
	PredictorID string
	TargetID    string
	Text        string
	Happened    bool
	Points      int
	CreatedAt   time.Time
}

// MemberView is a membership entry with the directory fields clients
// render.
type MemberView struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Online   bool   `json:"isOnline"`
	Ready    bool   `json:"isReady"`
}

// RoomView is the client-facing shape of a room.
type RoomView struct {
	Code           string       `json:"code"`
	HostID         string       `json:"hostId"`
	HostName       string       `json:"hostName"`
	Status         string       `json:"status"`
	CurrentRoundID string       `json:"currentRoundId,omitempty"`
	Members        []MemberView `json:"players"`
}

// AssignmentView resolves both sides of an assignment to names.
type AssignmentView struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	TargetID   string `json:"targetId"`
	TargetName string `json:"targetName"`
}

// RoundView is the client-facing shape of a round.
type RoundView struct {
	ID                   string           `json:"id"`
	RoomCode             string           `json:"roomCode"`
	Number               int              `json:"roundNumber"`
	Phase                string           `json:"phase"`
	Assignments          []AssignmentView `json:"assignments"`
	ObservationStartedAt *time.Time       `json:"observationStartTime,omitempty"`
	ObservationMS        int              `json:"observationDuration"`
	WinnerID             string           `json:"winnerId,omitempty"`
	CompletedAt          *time.Time       `json:"completedAt,omitempty"`
}

// PredictionView resolves predictor and target names.
type PredictionView struct {
	Prediction
	PredictorName string
	TargetName    string
}

// LeaveResult reports the outcome of leaving a room: either the room
// closed because its last member left, or the updated room.
type LeaveResult struct {
	Closed bool
	Room   RoomView
}

// ResolveResult reports winner determination. Losing the resolution
// race is a normal outcome, not an error: IsWinner is false and
// WinnerID names whoever claimed the round first.
type ResolveResult struct {
	Prediction Prediction
	IsWinner   bool
	WinnerID   string
	WinnerName string
	TotalScore int
}

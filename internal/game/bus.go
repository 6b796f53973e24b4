package game

// Event names fanned out to room channels. The channel is always the
// room code; lobby-players-updated goes to the shared lobby channel.
const (
	EventRoomUpdated         = "room-updated"
	EventRoundStarted        = "round-started"
	EventPhaseUpdated        = "phase-updated"
	EventPredictionSubmitted = "player-prediction-submitted"
	EventPredictionMarked    = "prediction-marked"
	EventRoundWon            = "round-won"
	EventLobbyPlayersUpdated = "lobby-players-updated"
)

// Broadcaster fans a state change out to every subscriber of a channel.
// Publishes for the same channel are delivered in the order they are
// issued. Implementations must not block the caller on slow consumers.
type Broadcaster interface {
	Publish(channel, event string, payload any)
}

// NopBroadcaster drops every publish. Useful when no transport is wired.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(channel, event string, payload any) {}

package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// codeRetryCap bounds join-code regeneration. The code space is large
// relative to concurrent room count, so hitting the cap means the
// generator is broken rather than the space exhausted.
const codeRetryCap = 16

// Store holds the canonical session state: rooms keyed by join code,
// rounds and predictions keyed by id. Every mutation runs as a single
// critical section under one mutex, which is what makes read-then-write
// sequences such as membership checks and the winner claim race-safe.
type Store struct {
	mu          sync.Mutex
	rooms       map[string]*Room
	rounds      map[string]*Round
	predictions map[string]*Prediction
}

func NewStore() *Store {
	return &Store{
		rooms:       make(map[string]*Room),
		rounds:      make(map[string]*Round),
		predictions: make(map[string]*Prediction),
	}
}

// CreateRoom inserts a room under a freshly generated unique join code.
func (s *Store) CreateRoom(hostID string) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for attempt := 0; attempt < codeRetryCap; attempt++ {
		code := newJoinCode()
		if _, taken := s.rooms[code]; taken {
			continue
		}
		room := &Room{
			Code:      code,
			HostID:    hostID,
			Members:   []Member{{PlayerID: hostID}},
			Status:    RoomWaiting,
			CreatedAt: time.Now().UTC(),
		}
		s.rooms[code] = room
		return cloneRoom(room), nil
	}
	return Room{}, storageErrorf("could not allocate a unique room code")
}

// GetRoom returns a copy of the room with the given code.
func (s *Store) GetRoom(code string) (Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[normalizeCode(code)]
	if !ok {
		return Room{}, false
	}
	return cloneRoom(room), true
}

// UpdateRoom applies update to the room under the store lock and
// returns the resulting state. A NotFoundError is returned when no room
// matches the code.
func (s *Store) UpdateRoom(code string, update func(room *Room) error) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[normalizeCode(code)]
	if !ok {
		return Room{}, notFoundErrorf("room not found")
	}
	if err := update(room); err != nil {
		return Room{}, err
	}
	return cloneRoom(room), nil
}

// RemoveMember deletes the player from the room's membership, promoting
// the next member by join order when the host departs and deleting the
// room entirely when nobody remains. The returned flag reports whether
// the room was deleted.
func (s *Store) RemoveMember(code, playerID string) (Room, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := normalizeCode(code)
	room, ok := s.rooms[key]
	if !ok {
		return Room{}, false, notFoundErrorf("room not found")
	}
	if room.member(playerID) == nil {
		return Room{}, false, notFoundErrorf("player not in room")
	}
	members := room.Members[:0]
	for _, m := range room.Members {
		if m.PlayerID != playerID {
			members = append(members, m)
		}
	}
	room.Members = members
	if len(room.Members) == 0 {
		delete(s.rooms, key)
		return Room{}, true, nil
	}
	if room.HostID == playerID {
		room.HostID = room.Members[0].PlayerID
	}
	if !room.allReady() {
		room.readySignaled = false
	}
	return cloneRoom(room), false, nil
}

// CreateRound inserts a round for the room under a single critical
// section: the round number, the assignment permutation and the room's
// status change are computed against one consistent membership view.
func (s *Store) CreateRound(code string, build func(room *Room, number int) (*Round, error)) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[normalizeCode(code)]
	if !ok {
		return Round{}, notFoundErrorf("room not found")
	}
	number := 1
	for _, round := range s.rounds {
		if round.RoomCode == room.Code && round.Number >= number {
			number = round.Number + 1
		}
	}
	round, err := build(room, number)
	if err != nil {
		return Round{}, err
	}
	if round.ID == "" {
		round.ID = uuid.NewString()
	}
	s.rounds[round.ID] = round
	room.Status = RoomInProgress
	room.CurrentRoundID = round.ID
	return cloneRound(round), nil
}

// GetRound returns a copy of the round with the given id.
func (s *Store) GetRound(id string) (Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[id]
	if !ok {
		return Round{}, false
	}
	return cloneRound(round), true
}

// UpdateRound applies update to the round under the store lock.
func (s *Store) UpdateRound(id string, update func(round *Round) error) (Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[id]
	if !ok {
		return Round{}, notFoundErrorf("round not found")
	}
	if err := update(round); err != nil {
		return Round{}, err
	}
	return cloneRound(round), nil
}

// ClaimWinner is the atomic conditional update behind winner
// determination: the winner is set only if it is currently unset, and
// the check and the write happen inside one critical section. Exactly
// one of any number of concurrent claimants observes claimed=true; the
// rest get the id of whoever won.
func (s *Store) ClaimWinner(roundID, playerID string, at time.Time) (claimed bool, winnerID string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[roundID]
	if !ok {
		return false, "", notFoundErrorf("round not found")
	}
	if round.WinnerID != "" {
		return false, round.WinnerID, nil
	}
	round.WinnerID = playerID
	round.CompletedAt = at
	round.Phase = PhaseCompleted
	return true, playerID, nil
}

// CreatePrediction inserts a prediction after validating it against the
// round inside the same critical section.
func (s *Store) CreatePrediction(roundID string, build func(round *Round) (*Prediction, error)) (Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	round, ok := s.rounds[roundID]
	if !ok {
		return Prediction{}, notFoundErrorf("round not found")
	}
	prediction, err := build(round)
	if err != nil {
		return Prediction{}, err
	}
	for _, existing := range s.predictions {
		if existing.RoundID == roundID && existing.PredictorID == prediction.PredictorID {
			return Prediction{}, conflictErrorf("player already submitted a prediction for this round")
		}
	}
	if prediction.ID == "" {
		prediction.ID = uuid.NewString()
	}
	s.predictions[prediction.ID] = prediction
	return *prediction, nil
}

// GetPrediction returns a copy of the prediction with the given id.
func (s *Store) GetPrediction(id string) (Prediction, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prediction, ok := s.predictions[id]
	if !ok {
		return Prediction{}, false
	}
	return *prediction, true
}

// UpdatePrediction applies update to the prediction under the store lock.
func (s *Store) UpdatePrediction(id string, update func(prediction *Prediction) error) (Prediction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prediction, ok := s.predictions[id]
	if !ok {
		return Prediction{}, notFoundErrorf("prediction not found")
	}
	if err := update(prediction); err != nil {
		return Prediction{}, err
	}
	return *prediction, nil
}

// PredictionsByRound lists predictions for a round in submission order.
func (s *Store) PredictionsByRound(roundID string) []Prediction {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]Prediction, 0)
	for _, prediction := range s.predictions {
		if prediction.RoundID == roundID {
			list = append(list, *prediction)
		}
	}
	sortPredictions(list)
	return list
}

func cloneRoom(room *Room) Room {
	clone := *room
	clone.Members = append([]Member(nil), room.Members...)
	return clone
}

func cloneRound(round *Round) Round {
	clone := *round
	clone.Assignments = append([]Assignment(nil), round.Assignments...)
	return clone
}

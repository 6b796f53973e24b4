package game

import "testing"

// Aggregates handed out by the store are copies; mutating one must
// never reach back into canonical state.
func TestCreateRoomReturnsIsolatedCopy(t *testing.T) {
	store := NewStore()
	room, err := store.CreateRoom("host-1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	room.Members[0].Ready = true
	room.Members = append(room.Members, Member{PlayerID: "intruder"})

	stored, ok := store.GetRoom(room.Code)
	if !ok {
		t.Fatalf("room not found")
	}
	if len(stored.Members) != 1 {
		t.Fatalf("expected 1 stored member, got %d", len(stored.Members))
	}
	if stored.Members[0].Ready {
		t.Fatalf("stored member ready flag changed through returned copy")
	}
}

func TestCreateRoundReturnsIsolatedCopy(t *testing.T) {
	store := NewStore()
	room, err := store.CreateRoom("host-1")
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := store.UpdateRoom(room.Code, func(room *Room) error {
		room.Members = append(room.Members, Member{PlayerID: "player-2"})
		return nil
	}); err != nil {
		t.Fatalf("add member: %v", err)
	}

	round, err := store.CreateRound(room.Code, func(room *Room, number int) (*Round, error) {
		return &Round{
			RoomCode: room.Code,
			Number:   number,
			Phase:    PhasePrediction,
			Assignments: []Assignment{
				{PlayerID: "host-1", TargetID: "player-2"},
				{PlayerID: "player-2", TargetID: "host-1"},
			},
		}, nil
	})
	if err != nil {
		t.Fatalf("create round: %v", err)
	}

	round.Assignments[0].TargetID = "nobody"

	stored, ok := store.GetRound(round.ID)
	if !ok {
		t.Fatalf("round not found")
	}
	if stored.Assignments[0].TargetID != "player-2" {
		t.Fatalf("stored assignment changed through returned copy: %#v", stored.Assignments[0])
	}
}

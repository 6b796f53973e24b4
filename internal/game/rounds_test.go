package game

import "testing"

func TestCreateRoundAssignmentIsCyclicShift(t *testing.T) {
	coord, directory, bus := newTestCoordinator(t)
	room, players := seedRoom(t, coord, directory, "Ada", "Ben", "Carol")

	round, err := coord.CreateRound(room.Code)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}
	if round.Number != 1 || round.Phase != PhasePrediction {
		t.Fatalf("unexpected round: %#v", round)
	}
	if len(round.Assignments) != len(players) {
		t.Fatalf("expected %d assignments, got %d", len(players), len(round.Assignments))
	}

	targets := make(map[string]string, len(round.Assignments))
	seenTargets := make(map[string]struct{})
	for _, a := range round.Assignments {
		if a.PlayerID == a.TargetID {
			t.Fatalf("player %s assigned to themself", a.PlayerID)
		}
		if _, dup := seenTargets[a.TargetID]; dup {
			t.Fatalf("target %s assigned twice", a.TargetID)
		}
		seenTargets[a.TargetID] = struct{}{}
		targets[a.PlayerID] = a.TargetID
	}
	for i, player := range players {
		want := players[(i+1)%len(players)].ID
		if targets[player.ID] != want {
			t.Fatalf("player %d: expected target %s, got %s", i, want, targets[player.ID])
		}
	}

	// The shift produces one cycle covering all players.
	cycle := 1
	for at := targets[players[0].ID]; at != players[0].ID; at = targets[at] {
		cycle++
		if cycle > len(players) {
			t.Fatalf("assignment is not a single cycle")
		}
	}
	if cycle != len(players) {
		t.Fatalf("expected cycle of length %d, got %d", len(players), cycle)
	}

	updated, err := coord.Room(room.Code)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if updated.Status != RoomInProgress || updated.CurrentRoundID != round.ID {
		t.Fatalf("expected in-progress room pointing at round, got %#v", updated)
	}
	if bus.count(room.Code, EventRoundStarted) != 1 {
		t.Fatalf("expected one round-started publish")
	}
}

func TestCreateRoundRequiresTwoPlayers(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, _ := seedRoom(t, coord, directory, "Ada")

	if _, err := coord.CreateRound(room.Code); !IsConflict(err) {
		t.Fatalf("expected conflict for single-member room, got %v", err)
	}
	if _, err := coord.CreateRound("ZZZZZZ"); !IsNotFound(err) {
		t.Fatalf("expected not-found for unknown room, got %v", err)
	}
}

func TestCreateRoundNumbersIncrement(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, _ := seedRoom(t, coord, directory, "Ada", "Ben")

	first, err := coord.CreateRound(room.Code)
	if err != nil {
		t.Fatalf("first round: %v", err)
	}
	second, err := coord.CreateRound(room.Code)
	if err != nil {
		t.Fatalf("second round: %v", err)
	}
	if first.Number != 1 || second.Number != 2 {
		t.Fatalf("expected numbers 1 and 2, got %d and %d", first.Number, second.Number)
	}
	updated, err := coord.Room(room.Code)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if updated.CurrentRoundID != second.ID {
		t.Fatalf("expected current round %s, got %s", second.ID, updated.CurrentRoundID)
	}
	if _, err := coord.Round(first.ID); err != nil {
		t.Fatalf("superseded round must remain readable: %v", err)
	}
}

func TestAdvancePhaseForwardOnly(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, _ := seedRoom(t, coord, directory, "Ada", "Ben")
	round, err := coord.CreateRound(room.Code)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}

	observed, err := coord.AdvancePhase(round.ID, PhaseObservation)
	if err != nil {
		t.Fatalf("advance to observation: %v", err)
	}
	if observed.ObservationStartedAt == nil {
		t.Fatalf("expected observation start stamp")
	}
	stamp := *observed.ObservationStartedAt

	if _, err := coord.AdvancePhase(round.ID, PhasePrediction); !IsConflict(err) {
		t.Fatalf("expected conflict rewinding phase, got %v", err)
	}
	if _, err := coord.AdvancePhase(round.ID, PhaseObservation); !IsConflict(err) {
		t.Fatalf("expected conflict repeating phase, got %v", err)
	}
	if _, err := coord.AdvancePhase(round.ID, "intermission"); !IsValidation(err) {
		t.Fatalf("expected validation error for unknown phase, got %v", err)
	}

	revealed, err := coord.AdvancePhase(round.ID, PhaseReveal)
	if err != nil {
		t.Fatalf("advance to reveal: %v", err)
	}
	if revealed.ObservationStartedAt == nil || !revealed.ObservationStartedAt.Equal(stamp) {
		t.Fatalf("observation stamp must not change after first entry")
	}

	done, err := coord.AdvancePhase(round.ID, PhaseCompleted)
	if err != nil {
		t.Fatalf("advance to completed: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatalf("expected completion stamp")
	}
}

func TestAdvancePhaseSkipsForward(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, _ := seedRoom(t, coord, directory, "Ada", "Ben")
	round, err := coord.CreateRound(room.Code)
	if err != nil {
		t.Fatalf("create round: %v", err)
	}

	// Jumping straight to reveal is still forward motion; observation
	// was never entered so no stamp appears.
	revealed, err := coord.AdvancePhase(round.ID, PhaseReveal)
	if err != nil {
		t.Fatalf("advance to reveal: %v", err)
	}
	if revealed.ObservationStartedAt != nil {
		t.Fatalf("unexpected observation stamp: %v", revealed.ObservationStartedAt)
	}
}

func TestAdvancePhaseUnknownRound(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)
	if _, err := coord.AdvancePhase("missing", PhaseObservation); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

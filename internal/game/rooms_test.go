package game

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestCreateRoomUnknownHost(t *testing.T) {
	coord, _, _ := newTestCoordinator(t)

	_, err := coord.CreateRoom("nobody")
	if !IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestCreateRoomHostIsSoleMember(t *testing.T) {
	coord, directory, bus := newTestCoordinator(t)
	host := mustCreatePlayer(t, directory, "Ada")

	room, err := coord.CreateRoom(host.ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if len(room.Code) != 6 {
		t.Fatalf("expected 6-char code, got %q", room.Code)
	}
	if room.HostID != host.ID || room.Status != RoomWaiting {
		t.Fatalf("unexpected room: %#v", room)
	}
	if len(room.Members) != 1 || room.Members[0].Ready {
		t.Fatalf("expected single not-ready member, got %#v", room.Members)
	}
	updated, err := directory.FindPlayer(host.ID)
	if err != nil || updated.CurrentRoom != room.Code {
		t.Fatalf("expected current room %s on host, got %#v (%v)", room.Code, updated, err)
	}
	if bus.count(room.Code, EventRoomUpdated) != 1 {
		t.Fatalf("expected one room-updated publish")
	}
}

func TestConcurrentCreateRoomCodesDistinct(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)

	const rooms = 32
	hosts := make([]Player, rooms)
	for i := range hosts {
		hosts[i] = mustCreatePlayer(t, directory, fmt.Sprintf("host-%d", i))
	}

	codes := make([]string, rooms)
	var wg sync.WaitGroup
	for i := 0; i < rooms; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			room, err := coord.CreateRoom(hosts[i].ID)
			if err != nil {
				t.Errorf("create room %d: %v", i, err)
				return
			}
			codes[i] = room.Code
		}(i)
	}
	wg.Wait()

	seen := make(map[string]struct{}, rooms)
	for _, code := range codes {
		if _, dup := seen[code]; dup {
			t.Fatalf("duplicate room code %s", code)
		}
		seen[code] = struct{}{}
	}
}

func TestJoinRoomRules(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, players := seedRoom(t, coord, directory, "Ada", "Ben")

	if _, err := coord.JoinRoom("ZZZZZZ", players[1].ID); !IsNotFound(err) {
		t.Fatalf("expected not-found for unknown code, got %v", err)
	}
	if _, err := coord.JoinRoom(room.Code, players[1].ID); !IsConflict(err) {
		t.Fatalf("expected conflict for duplicate join, got %v", err)
	}

	// Codes match case-insensitively.
	carol := mustCreatePlayer(t, directory, "Carol")
	lower, err := coord.JoinRoom(strings.ToLower(room.Code), carol.ID)
	if err != nil {
		t.Fatalf("lowercase join: %v", err)
	}
	if len(lower.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(lower.Members))
	}

	// A round moves the room out of waiting; late joins conflict.
	if _, err := coord.CreateRound(room.Code); err != nil {
		t.Fatalf("create round: %v", err)
	}
	dave := mustCreatePlayer(t, directory, "Dave")
	if _, err := coord.JoinRoom(room.Code, dave.ID); !IsConflict(err) {
		t.Fatalf("expected conflict joining in-progress room, got %v", err)
	}
}

func TestConcurrentDuplicateJoin(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, _ := seedRoom(t, coord, directory, "Ada")
	ben := mustCreatePlayer(t, directory, "Ben")

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = coord.JoinRoom(room.Code, ben.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !IsConflict(err) {
			t.Fatalf("unexpected join error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one successful join, got %d", succeeded)
	}
	updated, err := coord.Room(room.Code)
	if err != nil {
		t.Fatalf("get room: %v", err)
	}
	if len(updated.Members) != 2 {
		t.Fatalf("expected 2 members after racing joins, got %d", len(updated.Members))
	}
}

func TestSetReadySignalsOncePerStabilization(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, players := seedRoom(t, coord, directory, "Ada", "Ben")

	_, signaled, err := coord.SetReady(room.Code, players[0].ID, true)
	if err != nil || signaled {
		t.Fatalf("one ready member must not signal (signaled=%v err=%v)", signaled, err)
	}
	_, signaled, err = coord.SetReady(room.Code, players[1].ID, true)
	if err != nil || !signaled {
		t.Fatalf("all ready must signal (signaled=%v err=%v)", signaled, err)
	}

	// Repeating an identical ready state re-evaluates but must not
	// re-signal the same stabilization.
	_, signaled, err = coord.SetReady(room.Code, players[1].ID, true)
	if err != nil || signaled {
		t.Fatalf("repeat ready must not re-signal (signaled=%v err=%v)", signaled, err)
	}

	// Breaking readiness and restoring it is a new stabilization.
	if _, _, err := coord.SetReady(room.Code, players[1].ID, false); err != nil {
		t.Fatalf("unready: %v", err)
	}
	_, signaled, err = coord.SetReady(room.Code, players[1].ID, true)
	if err != nil || !signaled {
		t.Fatalf("restored readiness must signal again (signaled=%v err=%v)", signaled, err)
	}
}

func TestSetReadyUnknownMember(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, _ := seedRoom(t, coord, directory, "Ada")

	if _, _, err := coord.SetReady(room.Code, "nobody", true); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
	if _, _, err := coord.SetReady("ZZZZZZ", "nobody", true); !IsNotFound(err) {
		t.Fatalf("expected not-found for unknown room, got %v", err)
	}
}

func TestLeaveRoomPromotesNextByJoinOrder(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, players := seedRoom(t, coord, directory, "Ada", "Ben", "Carol")

	result, err := coord.LeaveRoom(room.Code, players[0].ID)
	if err != nil {
		t.Fatalf("leave room: %v", err)
	}
	if result.Closed {
		t.Fatalf("room should stay open with members remaining")
	}
	if result.Room.HostID != players[1].ID {
		t.Fatalf("expected host %s, got %s", players[1].ID, result.Room.HostID)
	}
	if len(result.Room.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(result.Room.Members))
	}
	host, err := directory.FindPlayer(players[0].ID)
	if err != nil || host.CurrentRoom != "" {
		t.Fatalf("expected cleared room reference, got %#v (%v)", host, err)
	}
}

func TestLeaveRoomClosesWhenEmpty(t *testing.T) {
	coord, directory, _ := newTestCoordinator(t)
	room, players := seedRoom(t, coord, directory, "Ada")

	result, err := coord.LeaveRoom(room.Code, players[0].ID)
	if err != nil {
		t.Fatalf("leave room: %v", err)
	}
	if !result.Closed {
		t.Fatalf("expected room to close")
	}
	if _, err := coord.Room(room.Code); !IsNotFound(err) {
		t.Fatalf("expected closed room to be gone, got %v", err)
	}
}

package game

import (
	"sync"
	"testing"
)

type recordedEvent struct {
	Channel string
	Event   string
	Payload any
}

// recorderBus captures publishes so tests can assert exact event
// sequences per room channel.
type recorderBus struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (b *recorderBus) Publish(channel, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{Channel: channel, Event: event, Payload: payload})
}

func (b *recorderBus) eventsFor(channel string) []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recordedEvent
	for _, event := range b.events {
		if event.Channel == channel {
			out = append(out, event)
		}
	}
	return out
}

func (b *recorderBus) count(channel, event string) int {
	n := 0
	for _, e := range b.eventsFor(channel) {
		if e.Event == event {
			n++
		}
	}
	return n
}

func newTestCoordinator(t *testing.T) (*Coordinator, *MemoryDirectory, *recorderBus) {
	t.Helper()
	directory := NewMemoryDirectory()
	bus := &recorderBus{}
	coord := New(NewStore(), directory, bus, nil, Options{})
	return coord, directory, bus
}

func mustCreatePlayer(t *testing.T, directory *MemoryDirectory, name string) Player {
	t.Helper()
	player, err := directory.CreatePlayer(name)
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	return player
}

// seedRoom opens a room hosted by the first name and joins the rest in
// order.
func seedRoom(t *testing.T, coord *Coordinator, directory *MemoryDirectory, names ...string) (RoomView, []Player) {
	t.Helper()
	players := make([]Player, 0, len(names))
	for _, name := range names {
		players = append(players, mustCreatePlayer(t, directory, name))
	}
	room, err := coord.CreateRoom(players[0].ID)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	for _, player := range players[1:] {
		room, err = coord.JoinRoom(room.Code, player.ID)
		if err != nil {
			t.Fatalf("join room: %v", err)
		}
	}
	return room, players
}

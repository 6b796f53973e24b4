package game

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// PlayerDirectory is the identity, presence and score store the
// coordinator depends on. The canonical implementation lives at the
// transport layer; NewMemoryDirectory backs tests and database-less
// runs.
type PlayerDirectory interface {
	FindPlayer(id string) (Player, error)
	SetPresence(id string, online bool, socketRef string) error
	IncrementScore(id string, delta int) (int, error)
	SetCurrentRoom(id, code string) error
	OnlinePlayers() ([]Player, error)
}

// MemoryDirectory is a mutex-guarded in-memory PlayerDirectory.
type MemoryDirectory struct {
	mu      sync.Mutex
	players map[string]*Player
}

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{players: make(map[string]*Player)}
}

// CreatePlayer registers a new guest and marks them online.
func (d *MemoryDirectory) CreatePlayer(name string) (Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Player{}, validationErrorf("name is required")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	player := &Player{
		ID:        uuid.NewString(),
		Name:      name,
		Online:    true,
		CreatedAt: time.Now().UTC(),
	}
	d.players[player.ID] = player
	return *player, nil
}

// FindByName returns the player with the given display name, if any.
func (d *MemoryDirectory) FindByName(name string) (Player, bool, error) {
	name = strings.TrimSpace(name)
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, player := range d.players {
		if player.Name == name {
			return *player, true, nil
		}
	}
	return Player{}, false, nil
}

func (d *MemoryDirectory) FindPlayer(id string) (Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	player, ok := d.players[id]
	if !ok {
		return Player{}, notFoundErrorf("player not found")
	}
	return *player, nil
}

func (d *MemoryDirectory) SetPresence(id string, online bool, socketRef string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	player, ok := d.players[id]
	if !ok {
		return notFoundErrorf("player not found")
	}
	player.Online = online
	if online {
		player.SocketRef = socketRef
	} else {
		player.SocketRef = ""
	}
	return nil
}

func (d *MemoryDirectory) IncrementScore(id string, delta int) (int, error) {
	if delta < 0 {
		return 0, validationErrorf("score delta must not be negative")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	player, ok := d.players[id]
	if !ok {
		return 0, notFoundErrorf("player not found")
	}
	player.Score += delta
	return player.Score, nil
}

func (d *MemoryDirectory) SetCurrentRoom(id, code string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	player, ok := d.players[id]
	if !ok {
		return notFoundErrorf("player not found")
	}
	player.CurrentRoom = code
	return nil
}

func (d *MemoryDirectory) OnlinePlayers() ([]Player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	online := make([]Player, 0, len(d.players))
	for _, player := range d.players {
		if player.Online {
			online = append(online, *player)
		}
	}
	return online, nil
}

package server

import (
	"errors"
	"strings"

	"behavior-call/internal/db"
	"behavior-call/internal/game"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"gorm.io/gorm"
)

// Directory is the full player store surface the transport layer needs:
// the coordinator's PlayerDirectory plus registration and name lookup
// for login.
type Directory interface {
	game.PlayerDirectory
	CreatePlayer(name string) (game.Player, error)
	FindByName(name string) (game.Player, bool, error)
}

// playerStore is the Postgres-backed Directory.
type playerStore struct {
	conn *gorm.DB
}

func newPlayerStore(conn *gorm.DB) *playerStore {
	return &playerStore{conn: conn}
}

func (p *playerStore) CreatePlayer(name string) (game.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return game.Player{}, &game.ValidationError{Message: "name is required"}
	}
	record := db.Player{
		ID:       uuid.NewString(),
		Name:     name,
		IsOnline: true,
	}
	if err := p.conn.Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return game.Player{}, &game.ConflictError{Message: "player name already registered"}
		}
		return game.Player{}, &game.StorageError{Message: err.Error()}
	}
	return toGamePlayer(record), nil
}

func (p *playerStore) FindByName(name string) (game.Player, bool, error) {
	var record db.Player
	err := p.conn.Where("name = ?", strings.TrimSpace(name)).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.Player{}, false, nil
	}
	if err != nil {
		return game.Player{}, false, &game.StorageError{Message: err.Error()}
	}
	return toGamePlayer(record), true, nil
}

func (p *playerStore) FindPlayer(id string) (game.Player, error) {
	var record db.Player
	err := p.conn.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return game.Player{}, &game.NotFoundError{Message: "player not found"}
	}
	if err != nil {
		return game.Player{}, &game.StorageError{Message: err.Error()}
	}
	return toGamePlayer(record), nil
}

func (p *playerStore) SetPresence(id string, online bool, socketRef string) error {
	if !online {
		socketRef = ""
	}
	result := p.conn.Model(&db.Player{}).Where("id = ?", id).Updates(map[string]any{
		"is_online": online,
		"socket_id": socketRef,
	})
	if result.Error != nil {
		return &game.StorageError{Message: result.Error.Error()}
	}
	if result.RowsAffected == 0 {
		return &game.NotFoundError{Message: "player not found"}
	}
	return nil
}

func (p *playerStore) IncrementScore(id string, delta int) (int, error) {
	if delta < 0 {
		return 0, &game.ValidationError{Message: "score delta must not be negative"}
	}
	result := p.conn.Model(&db.Player{}).Where("id = ?", id).
		Update("score", gorm.Expr("score + ?", delta))
	if result.Error != nil {
		return 0, &game.StorageError{Message: result.Error.Error()}
	}
	if result.RowsAffected == 0 {
		return 0, &game.NotFoundError{Message: "player not found"}
	}
	var record db.Player
	if err := p.conn.First(&record, "id = ?", id).Error; err != nil {
		return 0, &game.StorageError{Message: err.Error()}
	}
	return record.Score, nil
}

func (p *playerStore) SetCurrentRoom(id, code string) error {
	result := p.conn.Model(&db.Player{}).Where("id = ?", id).
		Update("current_room_code", code)
	if result.Error != nil {
		return &game.StorageError{Message: result.Error.Error()}
	}
	if result.RowsAffected == 0 {
		return &game.NotFoundError{Message: "player not found"}
	}
	return nil
}

func (p *playerStore) OnlinePlayers() ([]game.Player, error) {
	var records []db.Player
	if err := p.conn.Where("is_online = ?", true).Order("created_at").Find(&records).Error; err != nil {
		return nil, &game.StorageError{Message: err.Error()}
	}
	players := make([]game.Player, 0, len(records))
	for _, record := range records {
		players = append(players, toGamePlayer(record))
	}
	return players, nil
}

func toGamePlayer(record db.Player) game.Player {
	return game.Player{
		ID:          record.ID,
		Name:        record.Name,
		Online:      record.IsOnline,
		SocketRef:   record.SocketID,
		Score:       record.Score,
		CurrentRoom: record.CurrentRoomCode,
		CreatedAt:   record.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

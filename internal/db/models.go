package db

import (
	"time"

	"gorm.io/datatypes"
)

type Player struct {
	ID              string    `gorm:"primaryKey;size:36"`
	Name            string    `gorm:"size:64;uniqueIndex;not null"`
	SocketID        string    `gorm:"size:64"`
	IsOnline        bool      `gorm:"not null;default:false"`
	Score           int       `gorm:"not null;default:0"`
	CurrentRoomCode string    `gorm:"size:12"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

type Room struct {
	Code           string       `gorm:"primaryKey;size:12"`
	HostID         string       `gorm:"size:36;not null"`
	Status         string       `gorm:"size:16;not null"`
	CurrentRoundID *string      `gorm:"size:36"`
	CreatedAt      time.Time    `gorm:"not null"`
	UpdatedAt      time.Time    `gorm:"not null"`
	Members        []RoomMember `gorm:"foreignKey:RoomCode"`
}

type RoomMember struct {
	ID        uint      `gorm:"primaryKey"`
	RoomCode  string    `gorm:"size:12;index;not null;uniqueIndex:idx_members_room_player"`
	PlayerID  string    `gorm:"size:36;not null;uniqueIndex:idx_members_room_player"`
	IsReady   bool      `gorm:"not null;default:false"`
	Position  int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Round struct {
	ID                   string       `gorm:"primaryKey;size:36"`
	RoomCode             string       `gorm:"size:12;index;not null;uniqueIndex:idx_rounds_room_number"`
	Number               int          `gorm:"not null;uniqueIndex:idx_rounds_room_number"`
	Phase                string       `gorm:"size:16;not null"`
	ObservationStartedAt *time.Time
	ObservationMS        int          `gorm:"not null;default:300000"`
	WinnerID             *string      `gorm:"size:36"`
	CompletedAt          *time.Time
	CreatedAt            time.Time    `gorm:"not null"`
	UpdatedAt            time.Time    `gorm:"not null"`
	Assignments          []Assignment `gorm:"foreignKey:RoundID"`
}

type Assignment struct {
	ID        uint      `gorm:"primaryKey"`
	RoundID   string    `gorm:"size:36;index;not null;uniqueIndex:idx_assignments_round_player"`
	PlayerID  string    `gorm:"size:36;not null;uniqueIndex:idx_assignments_round_player"`
	TargetID  string    `gorm:"size:36;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

type Prediction struct {
	ID          string    `gorm:"primaryKey;size:36"`
	RoundID     string    `gorm:"size:36;index;not null;uniqueIndex:idx_predictions_round_predictor"`
	PredictorID string    `gorm:"size:36;not null;uniqueIndex:idx_predictions_round_predictor"`
	TargetID    string    `gorm:"size:36;not null"`
	Text        string    `gorm:"size:280;not null"`
	Happened    bool      `gorm:"not null;default:false"`
	Points      int       `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	RoomCode  string         `gorm:"size:12;index;not null"`
	RoundID   *string        `gorm:"size:36;index"`
	PlayerID  *string        `gorm:"size:36;index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}

package store

import (
	"time"

	"github.com/dkeye/QChat/internal/domain"
)

type UserModel struct {
	ID        string `gorm:"primaryKey"`
	Nickname  string `gorm:"not null"`
	Avatar    string
	QRToken   string `gorm:"column:qr_token;uniqueIndex"`
	CreatedAt time.Time
}

func (UserModel) TableName() string { return "users" }

func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:        domain.UserID(m.ID),
		Nickname:  m.Nickname,
		Avatar:    m.Avatar,
		QRToken:   m.QRToken,
		CreatedAt: m.CreatedAt,
	}
}

type RoomModel struct {
	ID              string `gorm:"primaryKey"`
	OwnerID         string `gorm:"index"`
	LastMessage     string
	LastMessageTime *time.Time
	CreatedAt       time.Time
}

func (RoomModel) TableName() string { return "rooms" }

func (m *RoomModel) ToDomain() *domain.Room {
	return &domain.Room{
		ID:              domain.RoomID(m.ID),
		OwnerID:         domain.UserID(m.OwnerID),
		LastMessage:     m.LastMessage,
		LastMessageTime: m.LastMessageTime,
		CreatedAt:       m.CreatedAt,
	}
}

type ParticipantModel struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RoomID   string `gorm:"uniqueIndex:idx_room_user"`
	UserID   string `gorm:"uniqueIndex:idx_room_user;index"`
	Nickname string
	Avatar   string
	IsOwner  bool
	JoinedAt time.Time
}

func (ParticipantModel) TableName() string { return "room_participants" }

func (m *ParticipantModel) ToDomain() domain.Participant {
	return domain.Participant{
		RoomID:   domain.RoomID(m.RoomID),
		UserID:   domain.UserID(m.UserID),
		Nickname: m.Nickname,
		Avatar:   m.Avatar,
		IsOwner:  m.IsOwner,
		JoinedAt: m.JoinedAt,
	}
}

type MessageModel struct {
	ID             string `gorm:"primaryKey"`
	RoomID         string `gorm:"index"`
	SenderID       string
	SenderNickname string
	Kind           string `gorm:"column:type"`
	Content        string
	FileName       string
	FileURL        string
	FileSize       string
	CreatedAt      time.Time `gorm:"index"`
}

func (MessageModel) TableName() string { return "messages" }

func (m *MessageModel) ToDomain() *domain.Message {
	return &domain.Message{
		ID:             domain.MessageID(m.ID),
		RoomID:         domain.RoomID(m.RoomID),
		SenderID:       domain.UserID(m.SenderID),
		SenderNickname: m.SenderNickname,
		Kind:           domain.MessageKind(m.Kind),
		Content:        m.Content,
		FileMeta: domain.FileMeta{
			FileName: m.FileName,
			FileURL:  m.FileURL,
			FileSize: m.FileSize,
		},
		CreatedAt: m.CreatedAt,
	}
}

package domain

import "time"

type RoomID string

type Room struct {
	ID              RoomID     `json:"id"`
	OwnerID         UserID     `json:"ownerId,omitempty"`
	LastMessage     string     `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

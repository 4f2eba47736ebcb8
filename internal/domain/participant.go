package domain

import "time"

// Participant represents user's membership meta for a room.
// No transport or lifecycle logic here.
type Participant struct {
	RoomID   RoomID    `json:"roomId,omitempty"`
	UserID   UserID    `json:"id"`
	Nickname string    `json:"nickname"`
	Avatar   string    `json:"avatar,omitempty"`
	IsOwner  bool      `json:"isOwner"`
	JoinedAt time.Time `json:"joinedAt,omitempty"`
}

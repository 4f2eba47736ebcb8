package core

import (
	"context"

	"github.com/dkeye/QChat/internal/domain"
)

// ClientConn abstracts the transport endpoint of one connected client.
// Owned by the adapter; the adapter must Close() it.
type ClientConn interface {
	TrySend([]byte) error
	Close()
}

// Event is the outbound envelope pushed to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// MembershipOracle answers "is U a member of R" and "who is in R", and
// persists new rooms. The session layer consumes it as a black box and
// never assumes exclusive access.
type MembershipOracle interface {
	IsMember(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (bool, error)
	Participants(ctx context.Context, roomID domain.RoomID) ([]domain.Participant, error)
	CreateRoom(ctx context.Context, owner, guest domain.Participant) (*domain.Room, error)
	// FindRoomBetween reports an existing room holding exactly the two
	// given users and nobody else, or nil when no such room exists.
	FindRoomBetween(ctx context.Context, a, b domain.UserID) (*domain.Room, error)
}

// UserDirectory resolves user identities and pairing tokens.
type UserDirectory interface {
	GetUser(ctx context.Context, id domain.UserID) (*domain.User, error)
	GetUserByToken(ctx context.Context, token string) (*domain.User, error)
}

// MessageStore persists messages and the room's last-message summary.
// Create assigns the identifier and the server-side timestamp.
type MessageStore interface {
	Create(ctx context.Context, draft *domain.Message) (*domain.Message, error)
	UpdateRoomSummary(ctx context.Context, roomID domain.RoomID, summary string) error
}

package chat

import (
	"context"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

type RoomPayload struct {
	RoomID domain.RoomID `json:"roomId"`
}

type UserRoomPayload struct {
	UserID domain.UserID `json:"userId"`
	RoomID domain.RoomID `json:"roomId"`
}

type TypingPayload struct {
	UserID   domain.UserID `json:"userId"`
	IsTyping bool          `json:"isTyping"`
}

// JoinRoom is gated: only a current member may announce presence in the
// room. The caller gets joined_room, the other members user_joined.
func (c *Chat) JoinRoom(ctx context.Context, uid domain.UserID, roomID domain.RoomID) error {
	if err := c.Gate.Authorize(ctx, roomID, uid); err != nil {
		return err
	}
	c.Registry.Send(uid, core.Event{Type: core.EvJoinedRoom, Data: RoomPayload{RoomID: roomID}})
	return c.broadcast(ctx, roomID, uid, core.Event{Type: core.EvUserJoined, Data: UserRoomPayload{UserID: uid, RoomID: roomID}})
}

// LeaveRoom is not gated: it mutates nothing durable and a leave from a
// non-member is a harmless no-op announcement.
func (c *Chat) LeaveRoom(ctx context.Context, uid domain.UserID, roomID domain.RoomID) error {
	c.Registry.Send(uid, core.Event{Type: core.EvLeftRoom, Data: RoomPayload{RoomID: roomID}})
	return c.broadcast(ctx, roomID, uid, core.Event{Type: core.EvUserLeft, Data: UserRoomPayload{UserID: uid, RoomID: roomID}})
}

// Typing relays ephemeral typing state to the other members, sender
// excluded. Nothing is persisted, deduplicated or rate-limited here;
// the event is delivered as received.
func (c *Chat) Typing(ctx context.Context, uid domain.UserID, roomID domain.RoomID, isTyping bool) error {
	return c.broadcast(ctx, roomID, uid, core.Event{Type: core.EvUserTyping, Data: TypingPayload{UserID: uid, IsTyping: isTyping}})
}

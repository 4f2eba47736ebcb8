// Package chat is the real-time session and broadcast layer: it tracks
// which users are connected, authorizes every inbound action against
// room membership and fans events out to the currently-connected
// members of a room. Disconnected members simply miss events broadcast
// while they are away; there is no offline queue.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/dkeye/QChat/internal/app"
	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

type Chat struct {
	Registry *app.Registry
	Gate     *app.Gate
	Rooms    core.MembershipOracle
	Users    core.UserDirectory
	Messages core.MessageStore
}

func New(rooms core.MembershipOracle, users core.UserDirectory, messages core.MessageStore) *Chat {
	return &Chat{
		Registry: app.NewRegistry(),
		Gate:     app.NewGate(rooms),
		Rooms:    rooms,
		Users:    users,
		Messages: messages,
	}
}

type ConnectedPayload struct {
	UserID      domain.UserID `json:"userId"`
	Nickname    string        `json:"nickname"`
	ConnectedAt time.Time     `json:"connectedAt"`
}

// Connect validates uid against the user directory and admits the
// transport, evicting any previous connection for the same identity.
// The admitted client receives a connected event.
func (c *Chat) Connect(ctx context.Context, uid domain.UserID, conn core.ClientConn) (*app.Connection, error) {
	user, err := c.Users.GetUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	entry := c.Registry.Admit(uid, user.Nickname, conn)
	c.Registry.Send(uid, core.Event{Type: core.EvConnected, Data: ConnectedPayload{
		UserID:      uid,
		Nickname:    user.Nickname,
		ConnectedAt: entry.ConnectedAt,
	}})
	return entry, nil
}

// Disconnect removes uid's registry entry while it still points at
// conn; a connection that was already replaced is left alone.
func (c *Chat) Disconnect(uid domain.UserID, conn core.ClientConn) {
	c.Registry.Remove(uid, conn)
}

// broadcast delivers ev to every participant of the room except skip
// (empty skip delivers to everyone). Members without a live connection
// are skipped silently; one failed push never aborts the rest.
func (c *Chat) broadcast(ctx context.Context, roomID domain.RoomID, skip domain.UserID, ev core.Event) error {
	parts, err := c.Rooms.Participants(ctx, roomID)
	if err != nil {
		return fmt.Errorf("resolve members: %w", err)
	}
	for _, p := range parts {
		if p.UserID == skip {
			continue
		}
		c.Registry.Send(p.UserID, ev)
	}
	return nil
}

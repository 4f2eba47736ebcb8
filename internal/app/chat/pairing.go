package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

type ScannedPayload struct {
	RoomID          domain.RoomID `json:"roomId"`
	ScannerNickname string        `json:"scannerNickname"`
	ScannerAvatar   string        `json:"scannerAvatar,omitempty"`
}

// Scan turns a scanned pairing token into a fresh room between the
// token owner and the scanner. Every scan creates a new room; collapsing
// repeat pairings is the job of Resolve. The owner, if connected, is
// told about the scan; an absent owner is not an error.
func (c *Chat) Scan(ctx context.Context, token string, scannerID domain.UserID, nickname, avatar string) (*domain.Room, error) {
	owner, err := c.Users.GetUserByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	room, err := c.createPairRoom(ctx, owner, scannerID, nickname, avatar)
	if err != nil {
		return nil, err
	}
	c.notifyOwner(owner.ID, room.ID, nickname, avatar)
	return room, nil
}

// Resolve is the symmetric two-party variant of Scan: an existing room
// holding exactly the owner and the scanner wins over creating a
// duplicate. Rooms with more than two participants never match and the
// flow falls back to create, so Resolve is idempotent for a fixed
// unordered pair.
func (c *Chat) Resolve(ctx context.Context, token string, scannerID domain.UserID, nickname, avatar string) (*domain.Room, error) {
	owner, err := c.Users.GetUserByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	room, err := c.Rooms.FindRoomBetween(ctx, owner.ID, scannerID)
	if err != nil {
		return nil, fmt.Errorf("pair lookup: %w", err)
	}
	if room != nil {
		log.Info().Str("module", "chat").Str("room", string(room.ID)).Msg("pair resolved to existing room")
		return room, nil
	}
	room, err = c.createPairRoom(ctx, owner, scannerID, nickname, avatar)
	if err != nil {
		return nil, err
	}
	c.notifyOwner(owner.ID, room.ID, nickname, avatar)
	return room, nil
}

func (c *Chat) createPairRoom(ctx context.Context, owner *domain.User, scannerID domain.UserID, nickname, avatar string) (*domain.Room, error) {
	if nickname == "" {
		// Scanner presented nothing; fall back to the directory.
		if u, err := c.Users.GetUser(ctx, scannerID); err == nil {
			nickname = u.Nickname
			if avatar == "" {
				avatar = u.Avatar
			}
		}
	}
	room, err := c.Rooms.CreateRoom(ctx,
		domain.Participant{UserID: owner.ID, Nickname: owner.Nickname, Avatar: owner.Avatar, IsOwner: true},
		domain.Participant{UserID: scannerID, Nickname: nickname, Avatar: avatar},
	)
	if err != nil {
		return nil, fmt.Errorf("create pair room: %w", err)
	}
	log.Info().Str("module", "chat").Str("room", string(room.ID)).Str("owner", string(owner.ID)).Str("scanner", string(scannerID)).Msg("pair room created")
	return room, nil
}

func (c *Chat) notifyOwner(owner domain.UserID, roomID domain.RoomID, nickname, avatar string) {
	c.Registry.Send(owner, core.Event{Type: core.EvQRCodeScanned, Data: ScannedPayload{
		RoomID:          roomID,
		ScannerNickname: nickname,
		ScannerAvatar:   avatar,
	}})
}

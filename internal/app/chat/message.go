package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

// summaryFilePlaceholder is the room preview text for non-text kinds.
const summaryFilePlaceholder = "sent a file"

// SendMessage authorizes, persists and broadcasts one message.
// Persistence is a precondition of broadcast: an unpersisted message
// never reaches any connection. The room summary update is best-effort
// and does not gate the broadcast.
func (c *Chat) SendMessage(ctx context.Context, senderID domain.UserID, roomID domain.RoomID, kind domain.MessageKind, content string, file domain.FileMeta) (*domain.Message, error) {
	if err := c.Gate.Authorize(ctx, roomID, senderID); err != nil {
		return nil, err
	}

	nickname, err := c.senderNickname(ctx, senderID)
	if err != nil {
		return nil, err
	}

	draft := &domain.Message{
		RoomID:         roomID,
		SenderID:       senderID,
		SenderNickname: nickname,
		Kind:           kind,
		Content:        content,
		FileMeta:       file,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	msg, err := c.Messages.Create(ctx, draft)
	if err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	summary := msg.Content
	if msg.Kind != domain.KindText {
		summary = summaryFilePlaceholder
	}
	if err := c.Messages.UpdateRoomSummary(ctx, roomID, summary); err != nil {
		log.Warn().Err(err).Str("module", "chat").Str("room", string(roomID)).Msg("room summary update failed")
	}

	if err := c.broadcast(ctx, roomID, "", core.Event{Type: core.EvNewMessage, Data: msg}); err != nil {
		// The message is persisted; only live delivery was lost.
		log.Warn().Err(err).Str("module", "chat").Str("room", string(roomID)).Msg("broadcast skipped")
	}
	return msg, nil
}

// senderNickname prefers the nickname cached at admission time and
// falls back to the user directory for commands that arrive without an
// active connection (e.g. the upload path).
func (c *Chat) senderNickname(ctx context.Context, uid domain.UserID) (string, error) {
	if entry, ok := c.Registry.Lookup(uid); ok {
		return entry.Nickname, nil
	}
	user, err := c.Users.GetUser(ctx, uid)
	if err != nil {
		return "", err
	}
	return user.Nickname, nil
}

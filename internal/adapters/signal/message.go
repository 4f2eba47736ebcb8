package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/domain"
)

func (ctl *ChatWSController) handleSendMessage(ctx context.Context, uid domain.UserID, conn *WsConn, data json.RawMessage) {
	var p struct {
		RoomID   domain.RoomID      `json:"roomId"`
		Kind     domain.MessageKind `json:"type"`
		Content  string             `json:"content"`
		FileName string             `json:"fileName"`
		FileURL  string             `json:"fileUrl"`
		FileSize string             `json:"fileSize"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Msg("bad message payload")
		ctl.sendError(conn, "invalid payload")
		return
	}

	file := domain.FileMeta{FileName: p.FileName, FileURL: p.FileURL, FileSize: p.FileSize}
	if _, err := ctl.Chat.SendMessage(ctx, uid, p.RoomID, p.Kind, p.Content, file); err != nil {
		ctl.fail(conn, err)
		return
	}
	// The sender receives the canonical message through the room
	// broadcast like every other member.
}

package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/app/chat"
	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

func (ctl *ChatWSController) handleScanQRCode(ctx context.Context, uid domain.UserID, conn *WsConn, data json.RawMessage) {
	var p struct {
		Token    string `json:"token"`
		Nickname string `json:"nickname"`
		Avatar   string `json:"avatar"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.Token == "" {
		ctl.sendError(conn, "invalid payload")
		return
	}

	room, err := ctl.Chat.Scan(ctx, p.Token, uid, p.Nickname, p.Avatar)
	if err != nil {
		ctl.fail(conn, err)
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("room", string(room.ID)).Msg("pairing token scanned")
	ctl.sendJSON(conn, core.Event{Type: core.EvRoomCreated, Data: chat.RoomPayload{RoomID: room.ID}})
}

package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/domain"
)

func (ctl *ChatWSController) handleJoinRoom(ctx context.Context, uid domain.UserID, conn *WsConn, data json.RawMessage) {
	var p struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		log.Warn().Str("module", "signal").Str("user", string(uid)).Msg("bad join payload")
		ctl.sendError(conn, "invalid payload")
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("room", string(p.RoomID)).Msg("join room")
	if err := ctl.Chat.JoinRoom(ctx, uid, p.RoomID); err != nil {
		ctl.fail(conn, err)
	}
}

func (ctl *ChatWSController) handleLeaveRoom(ctx context.Context, uid domain.UserID, conn *WsConn, data json.RawMessage) {
	var p struct {
		RoomID domain.RoomID `json:"roomId"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(conn, "invalid payload")
		return
	}
	log.Info().Str("module", "signal").Str("user", string(uid)).Str("room", string(p.RoomID)).Msg("leave room")
	if err := ctl.Chat.LeaveRoom(ctx, uid, p.RoomID); err != nil {
		ctl.fail(conn, err)
	}
}

func (ctl *ChatWSController) handleTyping(ctx context.Context, uid domain.UserID, conn *WsConn, data json.RawMessage) {
	var p struct {
		RoomID   domain.RoomID `json:"roomId"`
		IsTyping bool          `json:"isTyping"`
	}
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		ctl.sendError(conn, "invalid payload")
		return
	}
	if err := ctl.Chat.Typing(ctx, uid, p.RoomID, p.IsTyping); err != nil {
		ctl.fail(conn, err)
	}
}

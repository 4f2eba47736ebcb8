package signal

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

type frameHandler func(ctx context.Context, uid domain.UserID, conn *WsConn, data json.RawMessage)

type errorPayload struct {
	Message string `json:"message"`
}

func (ctl *ChatWSController) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump processes inbound frames in arrival order. On exit the
// registry entry is removed only while it still points at this
// transport, so a reconnect that already replaced us stays untouched.
func (ctl *ChatWSController) readPump(ctx context.Context, cancel context.CancelFunc, uid domain.UserID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("user", string(uid)).Msg("readPump closing")
		ctl.Chat.Disconnect(uid, c)
		c.Close()
		cancel()
	}()

	c.conn.SetReadLimit(ctl.readLimit)
	pongWait := ctl.pingPeriod * 10 / 9
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Str("user", string(uid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("readPump read error")
				}
				return
			}
			ctl.handleFrame(ctx, uid, c, data)
		}
	}
}

// handleFrame dispatches one inbound envelope through the fixed route
// table. Unknown or malformed frames produce a local error event only.
func (ctl *ChatWSController) handleFrame(ctx context.Context, uid domain.UserID, c *WsConn, data []byte) {
	var env struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("bad frame")
		ctl.sendError(c, "malformed message")
		return
	}
	h, ok := ctl.routes[env.Type]
	if !ok {
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown frame type")
		ctl.sendError(c, "unknown message type: "+env.Type)
		return
	}
	h(ctx, uid, c, env.Data)
}

func (ctl *ChatWSController) sendJSON(c *WsConn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = c.TrySend(b)
}

func (ctl *ChatWSController) sendError(c *WsConn, msg string) {
	ctl.sendJSON(c, core.Event{Type: core.EvError, Data: errorPayload{Message: msg}})
}

// fail maps a command failure onto the user-directed error event; the
// failure stays local to the issuing connection.
func (ctl *ChatWSController) fail(c *WsConn, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAuthorized):
		ctl.sendError(c, "not authorized")
	case errors.Is(err, domain.ErrUserNotFound):
		ctl.sendError(c, "user not found")
	case errors.Is(err, domain.ErrRoomNotFound):
		ctl.sendError(c, "room not found")
	case errors.Is(err, domain.ErrTokenNotFound):
		ctl.sendError(c, "invalid pairing token")
	case errors.Is(err, domain.ErrValidation):
		ctl.sendError(c, "invalid payload")
	default:
		log.Error().Err(err).Str("module", "signal").Msg("command failed")
		ctl.sendError(c, "internal error")
	}
}

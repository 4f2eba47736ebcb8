package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/app/chat"
	"github.com/dkeye/QChat/internal/config"
	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

// ChatWSController owns the websocket endpoint: admission, the per
// connection read/write pumps and the inbound dispatch table.
type ChatWSController struct {
	Chat       *chat.Chat
	readLimit  int64
	pingPeriod time.Duration
	routes     map[string]frameHandler
}

func NewChatWSController(c *chat.Chat, cfg *config.Config) *ChatWSController {
	ctl := &ChatWSController{
		Chat:       c,
		readLimit:  cfg.ReadLimit,
		pingPeriod: cfg.PingPeriod,
	}
	// Fixed dispatch table: one entry per inbound command kind keeps
	// the authorization path uniform across commands.
	ctl.routes = map[string]frameHandler{
		"join_room":    ctl.handleJoinRoom,
		"leave_room":   ctl.handleLeaveRoom,
		"send_message": ctl.handleSendMessage,
		"typing":       ctl.handleTyping,
		"scan_qr_code": ctl.handleScanQRCode,
	}
	return ctl
}

// WsConn is the transport handle recorded by the registry. TrySend is
// non-blocking; a full send buffer reports backpressure and the event
// is dropped by the caller.
type WsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *WsConn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleChat upgrades the request and admits the client. The user
// identity comes from the userId query parameter; an unknown identity
// is refused with an error event and an immediate close.
func (ctl *ChatWSController) HandleChat(ctx context.Context, c *gin.Context) {
	uid := domain.UserID(c.Query("userId"))
	log.Info().Str("module", "signal").Str("user", string(uid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	if uid == "" {
		refuse(ws, "missing userId")
		return
	}

	conn := &WsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	if _, err := ctl.Chat.Connect(c.Request.Context(), uid, conn); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("user", string(uid)).Msg("connect refused")
		refuse(ws, "user not found")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, uid, conn)
}

// refuse reports a pre-admission failure directly on the raw socket;
// the pumps never start for this connection.
func refuse(ws *websocket.Conn, msg string) {
	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteJSON(core.Event{Type: core.EvError, Data: errorPayload{Message: msg}})
	_ = ws.Close()
}

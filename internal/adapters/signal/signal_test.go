package signal

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/QChat/internal/app/chat"
	"github.com/dkeye/QChat/internal/config"
	"github.com/dkeye/QChat/internal/core"
)

func testController(c *chat.Chat) *ChatWSController {
	return NewChatWSController(c, &config.Config{
		ReadLimit:  32768,
		PingPeriod: 54 * time.Second,
	})
}

func drainEvents(t *testing.T, c *WsConn) []core.Event {
	t.Helper()
	var out []core.Event
	for {
		select {
		case b := <-c.send:
			var ev core.Event
			require.NoError(t, json.Unmarshal(b, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestTrySendBackpressure(t *testing.T) {
	c := &WsConn{send: make(chan []byte, 1)}

	require.NoError(t, c.TrySend([]byte("a")))
	assert.ErrorIs(t, c.TrySend([]byte("b")), ErrBackpressure)

	<-c.send
	assert.NoError(t, c.TrySend([]byte("c")))
}

func TestTrySendAfterClose(t *testing.T) {
	c := &WsConn{send: make(chan []byte, 1)}
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	assert.Error(t, c.TrySend([]byte("x")))
}

func TestHandleFrameUnknownType(t *testing.T) {
	ctl := testController(nil)
	conn := &WsConn{send: make(chan []byte, 4)}

	ctl.handleFrame(context.Background(), "u1", conn, []byte(`{"type":"dance","data":{}}`))

	evs := drainEvents(t, conn)
	require.Len(t, evs, 1)
	assert.Equal(t, core.EvError, evs[0].Type)
}

func TestHandleFrameMalformed(t *testing.T) {
	ctl := testController(nil)
	conn := &WsConn{send: make(chan []byte, 4)}

	ctl.handleFrame(context.Background(), "u1", conn, []byte(`{nope`))

	evs := drainEvents(t, conn)
	require.Len(t, evs, 1)
	assert.Equal(t, core.EvError, evs[0].Type)
}

func TestHandleFrameBadPayloadStaysLocal(t *testing.T) {
	// A structurally valid envelope with an unusable payload never
	// reaches the session layer; the error event goes to the issuer only.
	ctl := testController(nil)
	conn := &WsConn{send: make(chan []byte, 8)}

	frames := []string{
		`{"type":"join_room","data":{}}`,
		`{"type":"leave_room","data":{"roomId":""}}`,
		`{"type":"typing","data":{"isTyping":true}}`,
		`{"type":"send_message","data":{"content":"hi"}}`,
		`{"type":"scan_qr_code","data":{"nickname":"bob"}}`,
	}
	for _, f := range frames {
		ctl.handleFrame(context.Background(), "u1", conn, []byte(f))
	}

	evs := drainEvents(t, conn)
	require.Len(t, evs, len(frames))
	for _, ev := range evs {
		assert.Equal(t, core.EvError, ev.Type)
	}
}

func TestDispatchTableCoversProtocol(t *testing.T) {
	ctl := testController(nil)
	for _, kind := range []string{"join_room", "leave_room", "send_message", "typing", "scan_qr_code"} {
		assert.Contains(t, ctl.routes, kind)
	}
	assert.Len(t, ctl.routes, 5)
}

package app

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

// Connection is one admitted client. The transport handle is owned
// exclusively by the registry entry that records it.
type Connection struct {
	UserID      domain.UserID
	Nickname    string
	Conn        core.ClientConn
	ConnectedAt time.Time
}

// Registry maps a user identity to its single live connection. It is
// the only shared mutable structure of the session layer; every
// operation is an atomic single-key step under one lock, and the lock
// is never held across store or oracle calls.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.UserID]*Connection
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.UserID]*Connection)}
}

// Admit records conn as the live connection for uid. A previous
// connection for the same identity is evicted and closed. Eviction is
// silent: the evicted client gets a transport close, not a protocol
// error.
func (r *Registry) Admit(uid domain.UserID, nickname string, conn core.ClientConn) *Connection {
	entry := &Connection{
		UserID:      uid,
		Nickname:    nickname,
		Conn:        conn,
		ConnectedAt: time.Now(),
	}
	r.mu.Lock()
	old := r.conns[uid]
	r.conns[uid] = entry
	r.mu.Unlock()
	if old != nil {
		old.Conn.Close()
		log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("evicted stale connection")
	}
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Str("nickname", nickname).Msg("admitted")
	return entry
}

// Remove deletes the entry for uid only while it still holds conn.
// A slow disconnect handler must never remove a connection that has
// already replaced it.
func (r *Registry) Remove(uid domain.UserID, conn core.ClientConn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.conns[uid]
	if !ok || entry.Conn != conn {
		return
	}
	delete(r.conns, uid)
	log.Info().Str("module", "app.registry").Str("user", string(uid)).Msg("removed connection")
}

func (r *Registry) Lookup(uid domain.UserID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.conns[uid]
	return entry, ok
}

// Send pushes event to uid's connection. Best-effort: an absent user or
// an unwritable transport drops the event, no retry and no queue.
func (r *Registry) Send(uid domain.UserID, event core.Event) {
	r.mu.RLock()
	entry, ok := r.conns[uid]
	r.mu.RUnlock()
	if !ok {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("module", "app.registry").Str("event", event.Type).Msg("marshal event")
		return
	}
	if err := entry.Conn.TrySend(data); err != nil {
		log.Debug().Err(err).Str("module", "app.registry").Str("user", string(uid)).Str("event", event.Type).Msg("send dropped")
	}
}

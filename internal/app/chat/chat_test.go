package chat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/QChat/internal/core"
	"github.com/dkeye/QChat/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	closed bool
}

func (f *fakeConn) TrySend(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data)
	return nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeConn) events(t *testing.T) []core.Event {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]core.Event, 0, len(f.sent))
	for _, b := range f.sent {
		var ev core.Event
		require.NoError(t, json.Unmarshal(b, &ev))
		out = append(out, ev)
	}
	return out
}

func (f *fakeConn) eventTypes(t *testing.T) []string {
	t.Helper()
	evs := f.events(t)
	types := make([]string, len(evs))
	for i, ev := range evs {
		types[i] = ev.Type
	}
	return types
}

// fakeBackend is an in-memory stand-in for the durable collaborators:
// user directory, membership oracle and message store in one struct.
type fakeBackend struct {
	mu       sync.Mutex
	users    map[domain.UserID]*domain.User
	tokens   map[string]domain.UserID
	rooms    map[domain.RoomID]*domain.Room
	members  map[domain.RoomID][]domain.Participant
	messages []*domain.Message
	summary  map[domain.RoomID]string

	createErr  error
	summaryErr error
	memberErr  error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:   make(map[domain.UserID]*domain.User),
		tokens:  make(map[string]domain.UserID),
		rooms:   make(map[domain.RoomID]*domain.Room),
		members: make(map[domain.RoomID][]domain.Participant),
		summary: make(map[domain.RoomID]string),
	}
}

func (b *fakeBackend) addUser(nickname string) *domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := &domain.User{
		ID:       domain.UserID(uuid.NewString()),
		Nickname: nickname,
		QRToken:  uuid.NewString(),
	}
	b.users[u.ID] = u
	b.tokens[u.QRToken] = u.ID
	return u
}

func (b *fakeBackend) addRoom(members ...*domain.User) domain.RoomID {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := domain.RoomID(uuid.NewString())
	b.rooms[id] = &domain.Room{ID: id, OwnerID: members[0].ID}
	for i, u := range members {
		b.members[id] = append(b.members[id], domain.Participant{
			RoomID:   id,
			UserID:   u.ID,
			Nickname: u.Nickname,
			IsOwner:  i == 0,
		})
	}
	return id
}

func (b *fakeBackend) GetUser(_ context.Context, id domain.UserID) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return u, nil
}

func (b *fakeBackend) GetUserByToken(_ context.Context, token string) (*domain.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	uid, ok := b.tokens[token]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return b.users[uid], nil
}

func (b *fakeBackend) IsMember(_ context.Context, roomID domain.RoomID, uid domain.UserID) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.memberErr != nil {
		return false, b.memberErr
	}
	for _, p := range b.members[roomID] {
		if p.UserID == uid {
			return true, nil
		}
	}
	return false, nil
}

func (b *fakeBackend) Participants(_ context.Context, roomID domain.RoomID) ([]domain.Participant, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.members[roomID], nil
}

func (b *fakeBackend) CreateRoom(_ context.Context, owner, guest domain.Participant) (*domain.Room, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := domain.RoomID(uuid.NewString())
	b.rooms[id] = &domain.Room{ID: id, OwnerID: owner.UserID}
	owner.RoomID, guest.RoomID = id, id
	b.members[id] = []domain.Participant{owner, guest}
	return b.rooms[id], nil
}

func (b *fakeBackend) FindRoomBetween(_ context.Context, x, y domain.UserID) (*domain.Room, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, parts := range b.members {
		if len(parts) != 2 {
			continue
		}
		a, c := parts[0].UserID, parts[1].UserID
		if (a == x && c == y) || (a == y && c == x) {
			return b.rooms[id], nil
		}
	}
	return nil, nil
}

func (b *fakeBackend) Create(_ context.Context, draft *domain.Message) (*domain.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.createErr != nil {
		return nil, b.createErr
	}
	msg := *draft
	msg.ID = domain.MessageID(uuid.NewString())
	b.messages = append(b.messages, &msg)
	return &msg, nil
}

func (b *fakeBackend) UpdateRoomSummary(_ context.Context, roomID domain.RoomID, summary string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.summaryErr != nil {
		return b.summaryErr
	}
	b.summary[roomID] = summary
	return nil
}

func newTestChat(b *fakeBackend) *Chat {
	return New(b, b, b)
}

func connect(t *testing.T, c *Chat, u *domain.User) *fakeConn {
	t.Helper()
	conn := &fakeConn{}
	_, err := c.Connect(context.Background(), u.ID, conn)
	require.NoError(t, err)
	return conn
}

func TestConnectSendsConnectedEvent(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	c := newTestChat(b)

	conn := connect(t, c, alice)

	evs := conn.events(t)
	require.Len(t, evs, 1)
	assert.Equal(t, core.EvConnected, evs[0].Type)
}

func TestConnectUnknownUserRefused(t *testing.T) {
	b := newFakeBackend()
	c := newTestChat(b)

	_, err := c.Connect(context.Background(), "nobody", &fakeConn{})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	_, ok := c.Registry.Lookup("nobody")
	assert.False(t, ok, "a refused identity must not be registered")
}

func TestReconnectEvictsOldConnection(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	c := newTestChat(b)

	first := connect(t, c, alice)
	second := connect(t, c, alice)

	first.mu.Lock()
	closed := first.closed
	first.mu.Unlock()
	assert.True(t, closed, "old connection must be closed on reconnect")

	entry, ok := c.Registry.Lookup(alice.ID)
	require.True(t, ok)
	assert.Same(t, core.ClientConn(second), entry.Conn)
}

func TestSendMessageBroadcastsToAllMembers(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	aliceConn := connect(t, c, alice)
	bobConn := connect(t, c, bob)

	msg, err := c.SendMessage(context.Background(), alice.ID, room, domain.KindText, "hi", domain.FileMeta{})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "alice", msg.SenderNickname)

	// The sender receives the broadcast too.
	assert.Contains(t, aliceConn.eventTypes(t), core.EvNewMessage)
	assert.Contains(t, bobConn.eventTypes(t), core.EvNewMessage)
	assert.Equal(t, "hi", b.summary[room])
}

func TestSendMessageUnauthorized(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	mallory := b.addUser("mallory")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	bobConn := connect(t, c, bob)
	connect(t, c, mallory)

	_, err := c.SendMessage(context.Background(), mallory.ID, room, domain.KindText, "intrusion", domain.FileMeta{})
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)

	// The failure stays local: nothing persisted, nothing broadcast.
	assert.Empty(t, b.messages)
	assert.NotContains(t, bobConn.eventTypes(t), core.EvNewMessage)
}

func TestSendMessagePersistFailureBlocksBroadcast(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	b.createErr = errors.New("disk full")
	c := newTestChat(b)

	connect(t, c, alice)
	bobConn := connect(t, c, bob)

	_, err := c.SendMessage(context.Background(), alice.ID, room, domain.KindText, "hi", domain.FileMeta{})
	require.Error(t, err)
	assert.NotContains(t, bobConn.eventTypes(t), core.EvNewMessage)
}

func TestSendMessageSummaryFailureDoesNotBlockBroadcast(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	b.summaryErr = errors.New("room row gone")
	c := newTestChat(b)

	connect(t, c, alice)
	bobConn := connect(t, c, bob)

	_, err := c.SendMessage(context.Background(), alice.ID, room, domain.KindText, "hi", domain.FileMeta{})
	require.NoError(t, err)
	assert.Contains(t, bobConn.eventTypes(t), core.EvNewMessage)
}

func TestSendMessageFileSummaryPlaceholder(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	connect(t, c, alice)

	file := domain.FileMeta{FileName: "cat.png", FileURL: "/uploads/cat.png", FileSize: "1.5 KB"}
	_, err := c.SendMessage(context.Background(), alice.ID, room, domain.KindImage, "", file)
	require.NoError(t, err)
	assert.Equal(t, "sent a file", b.summary[room])
}

func TestSendMessageValidation(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)
	connect(t, c, alice)

	cases := []struct {
		name    string
		kind    domain.MessageKind
		content string
		file    domain.FileMeta
	}{
		{"empty text", domain.KindText, "", domain.FileMeta{}},
		{"file without url", domain.KindFile, "", domain.FileMeta{FileName: "a.pdf"}},
		{"unknown kind", domain.MessageKind("video"), "x", domain.FileMeta{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.SendMessage(context.Background(), alice.ID, room, tc.kind, tc.content, tc.file)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Empty(t, b.messages)
}

func TestSendMessageOfflineSenderUsesDirectoryNickname(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	// Alice sends over REST without a live socket.
	msg, err := c.SendMessage(context.Background(), alice.ID, room, domain.KindText, "hi", domain.FileMeta{})
	require.NoError(t, err)
	assert.Equal(t, "alice", msg.SenderNickname)
}

func TestJoinRoomGatedAndAnnounced(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	mallory := b.addUser("mallory")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	aliceConn := connect(t, c, alice)
	bobConn := connect(t, c, bob)
	connect(t, c, mallory)

	require.NoError(t, c.JoinRoom(context.Background(), alice.ID, room))
	assert.Contains(t, aliceConn.eventTypes(t), core.EvJoinedRoom)
	assert.Contains(t, bobConn.eventTypes(t), core.EvUserJoined)
	assert.NotContains(t, aliceConn.eventTypes(t), core.EvUserJoined)

	before := len(bobConn.events(t))
	err := c.JoinRoom(context.Background(), mallory.ID, room)
	assert.ErrorIs(t, err, domain.ErrNotAuthorized)
	assert.Len(t, bobConn.events(t), before, "a refused join must not be announced")
}

func TestLeaveRoomUngated(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	outsider := b.addUser("outsider")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	aliceConn := connect(t, c, alice)
	outsiderConn := connect(t, c, outsider)

	require.NoError(t, c.LeaveRoom(context.Background(), outsider.ID, room))
	assert.Contains(t, outsiderConn.eventTypes(t), core.EvLeftRoom)
	assert.Contains(t, aliceConn.eventTypes(t), core.EvUserLeft)
}

func TestTypingExcludesSender(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	aliceConn := connect(t, c, alice)
	bobConn := connect(t, c, bob)

	require.NoError(t, c.Typing(context.Background(), alice.ID, room, true))
	assert.Contains(t, bobConn.eventTypes(t), core.EvUserTyping)
	assert.NotContains(t, aliceConn.eventTypes(t), core.EvUserTyping)
}

func TestTypingSkipsDisconnectedMembers(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	c := newTestChat(b)

	connect(t, c, alice)
	// Bob never connects; the relay must not fail.
	require.NoError(t, c.Typing(context.Background(), alice.ID, room, true))
}

func TestScanCreatesRoomAndNotifiesOwner(t *testing.T) {
	b := newFakeBackend()
	owner := b.addUser("alice")
	scanner := b.addUser("bob")
	c := newTestChat(b)

	ownerConn := connect(t, c, owner)
	connect(t, c, scanner)

	room, err := c.Scan(context.Background(), owner.QRToken, scanner.ID, "Bob", "")
	require.NoError(t, err)
	require.NotNil(t, room)
	assert.Equal(t, owner.ID, room.OwnerID)

	evs := ownerConn.events(t)
	var scanned *core.Event
	for i := range evs {
		if evs[i].Type == core.EvQRCodeScanned {
			scanned = &evs[i]
		}
	}
	require.NotNil(t, scanned, "owner must be told about the scan")
	data, _ := json.Marshal(scanned.Data)
	var payload ScannedPayload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, room.ID, payload.RoomID)
	assert.Equal(t, "Bob", payload.ScannerNickname)
}

func TestScanUnknownToken(t *testing.T) {
	b := newFakeBackend()
	scanner := b.addUser("bob")
	c := newTestChat(b)
	connect(t, c, scanner)

	_, err := c.Scan(context.Background(), "no-such-token", scanner.ID, "Bob", "")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
	assert.Empty(t, b.rooms)
}

func TestScanWithOfflineOwnerStillCreatesRoom(t *testing.T) {
	b := newFakeBackend()
	owner := b.addUser("alice")
	scanner := b.addUser("bob")
	c := newTestChat(b)
	connect(t, c, scanner)

	room, err := c.Scan(context.Background(), owner.QRToken, scanner.ID, "Bob", "")
	require.NoError(t, err)
	assert.NotNil(t, room)
}

func TestRepeatedScansCreateDistinctRooms(t *testing.T) {
	b := newFakeBackend()
	owner := b.addUser("alice")
	scanner := b.addUser("bob")
	c := newTestChat(b)

	r1, err := c.Scan(context.Background(), owner.QRToken, scanner.ID, "Bob", "")
	require.NoError(t, err)
	r2, err := c.Scan(context.Background(), owner.QRToken, scanner.ID, "Bob", "")
	require.NoError(t, err)
	assert.NotEqual(t, r1.ID, r2.ID, "every scan creates a fresh room")
}

func TestScanFallsBackToDirectoryNickname(t *testing.T) {
	b := newFakeBackend()
	owner := b.addUser("alice")
	scanner := b.addUser("bob")
	c := newTestChat(b)

	room, err := c.Scan(context.Background(), owner.QRToken, scanner.ID, "", "")
	require.NoError(t, err)

	parts, err := b.Participants(context.Background(), room.ID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "bob", parts[1].Nickname)
}

func TestResolveReusesExistingPairRoom(t *testing.T) {
	b := newFakeBackend()
	owner := b.addUser("alice")
	scanner := b.addUser("bob")
	c := newTestChat(b)

	r1, err := c.Resolve(context.Background(), owner.QRToken, scanner.ID, "Bob", "")
	require.NoError(t, err)
	r2, err := c.Resolve(context.Background(), owner.QRToken, scanner.ID, "Bob", "")
	require.NoError(t, err)
	assert.Equal(t, r1.ID, r2.ID, "resolve is idempotent for a fixed pair")
}

func TestDisconnectStaleHandlerKeepsReplacement(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	c := newTestChat(b)

	first := connect(t, c, alice)
	second := connect(t, c, alice)

	c.Disconnect(alice.ID, first)
	entry, ok := c.Registry.Lookup(alice.ID)
	require.True(t, ok, "replacement must survive the stale disconnect")
	assert.Same(t, core.ClientConn(second), entry.Conn)
}

func TestGateOracleFailurePropagates(t *testing.T) {
	b := newFakeBackend()
	alice := b.addUser("alice")
	bob := b.addUser("bob")
	room := b.addRoom(alice, bob)
	b.memberErr = errors.New("db down")
	c := newTestChat(b)
	connect(t, c, alice)

	_, err := c.SendMessage(context.Background(), alice.ID, room, domain.KindText, "hi", domain.FileMeta{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotAuthorized)
}

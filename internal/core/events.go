package core

// Outbound event types. The wire envelope is {"type": ..., "data": ...}.
const (
	EvConnected     = "connected"
	EvJoinedRoom    = "joined_room"
	EvLeftRoom      = "left_room"
	EvUserJoined    = "user_joined"
	EvUserLeft      = "user_left"
	EvNewMessage    = "new_message"
	EvUserTyping    = "user_typing"
	EvQRCodeScanned = "qr_code_scanned"
	EvRoomCreated   = "room_created"
	EvError         = "error"
)

package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dkeye/QChat/internal/domain"
)

type createRoomRequest struct {
	OwnerID       domain.UserID `json:"ownerId"`
	ParticipantID domain.UserID `json:"participantId"`
}

// createRoom is the owner-initiated path: both users come from the
// directory, no pairing token involved.
func (h *Handlers) createRoom(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.OwnerID == "" || req.ParticipantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	owner, err := h.Store.GetUser(c.Request.Context(), req.OwnerID)
	if err != nil {
		respondError(c, err)
		return
	}
	guest, err := h.Store.GetUser(c.Request.Context(), req.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}
	room, err := h.Store.CreateRoom(c.Request.Context(),
		domain.Participant{UserID: owner.ID, Nickname: owner.Nickname, Avatar: owner.Avatar, IsOwner: true},
		domain.Participant{UserID: guest.ID, Nickname: guest.Nickname, Avatar: guest.Avatar},
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

type pairRequest struct {
	Token     string        `json:"token"`
	ScannerID domain.UserID `json:"scannerId"`
	Nickname  string        `json:"nickname"`
	Avatar    string        `json:"avatar"`
}

// resolvePair reuses an existing two-party room for the pair when one
// exists and creates one otherwise.
func (h *Handlers) resolvePair(c *gin.Context) {
	var req pairRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" || req.ScannerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	room, err := h.Chat.Resolve(c.Request.Context(), req.Token, req.ScannerID, req.Nickname, req.Avatar)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *Handlers) listRooms(c *gin.Context) {
	uid := domain.UserID(c.Query("userId"))
	if uid == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing userId"})
		return
	}
	rooms, err := h.Store.RoomsOfUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *Handlers) getRoom(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))
	room, err := h.Store.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	parts, err := h.Store.Participants(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":              room.ID,
		"ownerId":         room.OwnerID,
		"lastMessage":     room.LastMessage,
		"lastMessageTime": room.LastMessageTime,
		"createdAt":       room.CreatedAt,
		"participants":    parts,
	})
}

func (h *Handlers) checkAccess(c *gin.Context) {
	ok, err := h.Store.IsMember(c.Request.Context(),
		domain.RoomID(c.Param("id")), domain.UserID(c.Param("userId")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hasAccess": ok})
}

type addParticipantRequest struct {
	UserID domain.UserID `json:"userId"`
}

// addParticipant grows a room beyond its initial pair. The new member is
// snapshotted from the user directory at join time.
func (h *Handlers) addParticipant(c *gin.Context) {
	roomID := domain.RoomID(c.Param("id"))
	var req addParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	if _, err := h.Store.GetRoom(c.Request.Context(), roomID); err != nil {
		respondError(c, err)
		return
	}
	user, err := h.Store.GetUser(c.Request.Context(), req.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	p := domain.Participant{
		RoomID:   roomID,
		UserID:   user.ID,
		Nickname: user.Nickname,
		Avatar:   user.Avatar,
	}
	if err := h.Store.AddParticipant(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

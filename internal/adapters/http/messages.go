package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/domain"
	"github.com/dkeye/QChat/internal/storage"
)

func (h *Handlers) listMessages(c *gin.Context) {
	roomID := domain.RoomID(c.Param("roomId"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	msgs, err := h.Store.MessagesOfRoom(c.Request.Context(), roomID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

type sendMessageRequest struct {
	RoomID   domain.RoomID      `json:"roomId"`
	SenderID domain.UserID      `json:"senderId"`
	Kind     domain.MessageKind `json:"type"`
	Content  string             `json:"content"`
	FileName string             `json:"fileName"`
	FileURL  string             `json:"fileUrl"`
	FileSize string             `json:"fileSize"`
}

// sendMessage is the REST mirror of the send_message command; connected
// room members receive the same new_message event as over the socket.
func (h *Handlers) sendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RoomID == "" || req.SenderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	file := domain.FileMeta{FileName: req.FileName, FileURL: req.FileURL, FileSize: req.FileSize}
	msg, err := h.Chat.SendMessage(c.Request.Context(), req.SenderID, req.RoomID, req.Kind, req.Content, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// uploadMessage accepts a multipart upload, stores the file and relays
// it as an image or file message in one step.
func (h *Handlers) uploadMessage(c *gin.Context) {
	roomID := domain.RoomID(c.PostForm("roomId"))
	senderID := domain.UserID(c.PostForm("senderId"))
	if roomID == "" || senderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing roomId or senderId"})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing file"})
		return
	}
	if fh.Size > h.MaxUpload {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "file too large"})
		return
	}
	if !storage.AllowedType(fh.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "file type not allowed"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer f.Close()

	saved, err := h.Files.Save(c.Request.Context(), fh.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}

	kind := domain.KindFile
	if strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		kind = domain.KindImage
	}
	file := domain.FileMeta{
		FileName: fh.Filename,
		FileURL:  saved.URL,
		FileSize: storage.FormatSize(fh.Size),
	}
	msg, err := h.Chat.SendMessage(c.Request.Context(), senderID, roomID, kind, "", file)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("room", string(roomID)).Str("file", saved.Filename).Msg("upload relayed")
	c.JSON(http.StatusCreated, msg)
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/QChat/internal/domain"
)

type createUserRequest struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

func (h *Handlers) createUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid payload"})
		return
	}
	user, err := domain.NewUser(req.Nickname, req.Avatar)
	if err != nil {
		if errors.Is(err, domain.ErrNicknameEmpty) || errors.Is(err, domain.ErrNicknameTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	if err := h.Store.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("module", "adapters.http").Str("user", string(user.ID)).Msg("user registered")
	c.JSON(http.StatusCreated, gin.H{
		"id":        user.ID,
		"nickname":  user.Nickname,
		"avatar":    user.Avatar,
		"qrToken":   user.QRToken,
		"scanUrl":   h.BaseURL + "/scan/" + user.QRToken,
		"createdAt": user.CreatedAt,
	})
}

func (h *Handlers) getUser(c *gin.Context) {
	user, err := h.Store.GetUser(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// getTokenInfo resolves a pairing token to its owner. The token value
// itself is not echoed back.
func (h *Handlers) getTokenInfo(c *gin.Context) {
	user, err := h.Store.GetUserByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"userId":   user.ID,
		"nickname": user.Nickname,
		"avatar":   user.Avatar,
	})
}

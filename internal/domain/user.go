// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const MaxNicknameLen = 36

var (
	ErrNicknameEmpty   = errors.New("nickname empty")
	ErrNicknameTooLong = errors.New("nickname too long")
)

type UserID string

type User struct {
	ID        UserID    `json:"id"`
	Nickname  string    `json:"nickname"`
	Avatar    string    `json:"avatar,omitempty"`
	QRToken   string    `json:"qrToken,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
// The pairing token is issued here and stays valid for the lifetime of
// the user; it is not single-use.
func NewUser(nickname, avatar string) (*User, error) {
	if len(nickname) == 0 {
		return nil, ErrNicknameEmpty
	}
	if len(nickname) > MaxNicknameLen {
		return nil, ErrNicknameTooLong
	}
	return &User{
		ID:       UserID(uuid.NewString()),
		Nickname: nickname,
		Avatar:   avatar,
		QRToken:  uuid.NewString(),
	}, nil
}

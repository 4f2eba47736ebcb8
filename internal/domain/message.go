package domain

import (
	"fmt"
	"time"
)

type MessageKind string

const (
	KindText  MessageKind = "text"
	KindImage MessageKind = "image"
	KindFile  MessageKind = "file"
)

func (k MessageKind) Valid() bool {
	switch k {
	case KindText, KindImage, KindFile:
		return true
	}
	return false
}

type MessageID string

// FileMeta travels with image and file messages. Size is a preformatted
// human-readable string, not a byte count.
type FileMeta struct {
	FileName string `json:"fileName,omitempty"`
	FileURL  string `json:"fileUrl,omitempty"`
	FileSize string `json:"fileSize,omitempty"`
}

// Message is durable once persisted. Exactly one of content / file meta
// is meaningful depending on Kind: text carries content, image and file
// carry a file URL.
type Message struct {
	ID             MessageID   `json:"id"`
	RoomID         RoomID      `json:"roomId"`
	SenderID       UserID      `json:"senderId"`
	SenderNickname string      `json:"senderNickname"`
	Kind           MessageKind `json:"type"`
	Content        string      `json:"content,omitempty"`
	FileMeta
	CreatedAt time.Time `json:"createdAt"`
}

func (m *Message) Validate() error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown message type %q", ErrValidation, m.Kind)
	}
	if m.Kind == KindText && m.Content == "" {
		return fmt.Errorf("%w: text message without content", ErrValidation)
	}
	if m.Kind != KindText && m.FileURL == "" {
		return fmt.Errorf("%w: %s message without file url", ErrValidation, m.Kind)
	}
	return nil
}

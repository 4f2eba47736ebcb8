package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dkeye/QChat/internal/domain"
)

// Create persists draft and returns the canonical message with the
// generated identifier and the server-assigned timestamp.
func (s *Store) Create(ctx context.Context, draft *domain.Message) (*domain.Message, error) {
	model := &MessageModel{
		ID:             uuid.NewString(),
		RoomID:         string(draft.RoomID),
		SenderID:       string(draft.SenderID),
		SenderNickname: draft.SenderNickname,
		Kind:           string(draft.Kind),
		Content:        draft.Content,
		FileName:       draft.FileName,
		FileURL:        draft.FileURL,
		FileSize:       draft.FileSize,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return model.ToDomain(), nil
}

func (s *Store) GetMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	var model MessageModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return model.ToDomain(), nil
}

// MessagesOfRoom pages through a room's history, newest first.
func (s *Store) MessagesOfRoom(ctx context.Context, roomID domain.RoomID, limit, offset int) ([]domain.Message, error) {
	if limit < 1 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var models []MessageModel
	err := s.db.WithContext(ctx).
		Where("room_id = ?", string(roomID)).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("room messages: %w", err)
	}
	msgs := make([]domain.Message, len(models))
	for i := range models {
		msgs[i] = *models[i].ToDomain()
	}
	return msgs, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dkeye/QChat/internal/domain"
)

// CreateRoom persists a new room with its first two participants in one
// transaction. The owner participant carries the owner flag.
func (s *Store) CreateRoom(ctx context.Context, owner, guest domain.Participant) (*domain.Room, error) {
	model := &RoomModel{
		ID:      uuid.NewString(),
		OwnerID: string(owner.UserID),
	}
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		parts := []ParticipantModel{
			{
				RoomID:   model.ID,
				UserID:   string(owner.UserID),
				Nickname: owner.Nickname,
				Avatar:   owner.Avatar,
				IsOwner:  true,
				JoinedAt: now,
			},
			{
				RoomID:   model.ID,
				UserID:   string(guest.UserID),
				Nickname: guest.Nickname,
				Avatar:   guest.Avatar,
				IsOwner:  guest.IsOwner,
				JoinedAt: now,
			},
		}
		return tx.Create(&parts).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	log.Info().Str("module", "store").Str("room", model.ID).Str("owner", string(owner.UserID)).Str("guest", string(guest.UserID)).Msg("room created")
	return model.ToDomain(), nil
}

// AddParticipant joins one more user to an existing room, turning a
// pair room into a group room.
func (s *Store) AddParticipant(ctx context.Context, p domain.Participant) error {
	model := &ParticipantModel{
		RoomID:   string(p.RoomID),
		UserID:   string(p.UserID),
		Nickname: p.Nickname,
		Avatar:   p.Avatar,
		IsOwner:  p.IsOwner,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *Store) GetRoom(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var model RoomModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, fmt.Errorf("get room: %w", err)
	}
	return model.ToDomain(), nil
}

// RoomsOfUser lists the rooms a user participates in, newest first.
func (s *Store) RoomsOfUser(ctx context.Context, uid domain.UserID) ([]domain.Room, error) {
	var models []RoomModel
	err := s.db.WithContext(ctx).
		Joins("JOIN room_participants ON room_participants.room_id = rooms.id").
		Where("room_participants.user_id = ?", string(uid)).
		Order("rooms.created_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("rooms of user: %w", err)
	}
	rooms := make([]domain.Room, len(models))
	for i := range models {
		rooms[i] = *models[i].ToDomain()
	}
	return rooms, nil
}

func (s *Store) Participants(ctx context.Context, roomID domain.RoomID) ([]domain.Participant, error) {
	var models []ParticipantModel
	err := s.db.WithContext(ctx).
		Where("room_id = ?", string(roomID)).
		Order("joined_at").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("room participants: %w", err)
	}
	parts := make([]domain.Participant, len(models))
	for i := range models {
		parts[i] = models[i].ToDomain()
	}
	return parts, nil
}

func (s *Store) IsMember(ctx context.Context, roomID domain.RoomID, uid domain.UserID) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&ParticipantModel{}).
		Where("room_id = ? AND user_id = ?", string(roomID), string(uid)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("membership check: %w", err)
	}
	return count > 0, nil
}

// FindRoomBetween reports an existing room whose participant set is
// exactly {a, b}. Rooms holding additional participants never match;
// no match is (nil, nil), not an error.
func (s *Store) FindRoomBetween(ctx context.Context, a, b domain.UserID) (*domain.Room, error) {
	var candidates []string
	err := s.db.WithContext(ctx).Model(&ParticipantModel{}).
		Select("room_id").
		Where("user_id IN ?", []string{string(a), string(b)}).
		Group("room_id").
		Having("COUNT(DISTINCT user_id) = 2").
		Find(&candidates).Error
	if err != nil {
		return nil, fmt.Errorf("pair candidates: %w", err)
	}
	for _, roomID := range candidates {
		var total int64
		err := s.db.WithContext(ctx).Model(&ParticipantModel{}).
			Where("room_id = ?", roomID).
			Count(&total).Error
		if err != nil {
			return nil, fmt.Errorf("pair candidate size: %w", err)
		}
		if total != 2 {
			continue
		}
		return s.GetRoom(ctx, domain.RoomID(roomID))
	}
	return nil, nil
}

// UpdateRoomSummary stores the room's last-message preview. Callers
// treat failures as best-effort, never a broadcast precondition.
func (s *Store) UpdateRoomSummary(ctx context.Context, roomID domain.RoomID, summary string) error {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&RoomModel{}).
		Where("id = ?", string(roomID)).
		Updates(map[string]any{
			"last_message":      summary,
			"last_message_time": now,
		})
	if result.Error != nil {
		return fmt.Errorf("update room summary: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrRoomNotFound
	}
	return nil
}

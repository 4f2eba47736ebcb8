package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/dkeye/QChat/internal/domain"
)

// CreateUser persists u. The caller supplies the ID and the pairing
// token (see domain.NewUser); the created-at timestamp is assigned here.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	model := &UserModel{
		ID:       string(u.ID),
		Nickname: u.Nickname,
		Avatar:   u.Avatar,
		QRToken:  u.QRToken,
	}
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	u.CreatedAt = model.CreatedAt
	log.Info().Str("module", "store").Str("user", string(u.ID)).Msg("user created")
	return nil
}

func (s *Store) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return model.ToDomain(), nil
}

// GetUserByToken resolves a pairing token to its owning user. Tokens
// stay valid indefinitely; an unknown token yields ErrTokenNotFound.
func (s *Store) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	var model UserModel
	err := s.db.WithContext(ctx).First(&model, "qr_token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		return nil, fmt.Errorf("get user by token: %w", err)
	}
	return model.ToDomain(), nil
}

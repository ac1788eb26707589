package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
)

type UserService struct {
	Repo *repo.GormRepo
}

func (s *UserService) Me(ctx context.Context, userID uint) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, MsgUserNotFound, err)
	}
	return u, err
}

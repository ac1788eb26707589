package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/util"
)

type ShopService struct {
	Repo *repo.GormRepo
}

func (s *ShopService) State(ctx context.Context, userID uint) (*models.Shop, error) {
	shop, err := s.Repo.GetShopByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, MsgShopNotFound, err)
	}
	return shop, err
}

func (s *ShopService) SetState(ctx context.Context, userID uint, raw string) error {
	if raw == "" {
		return newError(ErrValidation, MsgMissingArgs, nil)
	}
	state, err := util.ParseTruth(raw)
	if err != nil {
		return newError(ErrValidation, err.Error(), err)
	}

	n, err := s.Repo.SetShopState(ctx, userID, state)
	if err != nil {
		return err
	}
	if n == 0 {
		return newError(ErrNotFound, MsgShopNotFound, nil)
	}
	return nil
}

// Orders lists placed orders with the supplier's own lines and their total.
func (s *ShopService) Orders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Repo.ListShopOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].ComputeTotal()
	}
	return orders, nil
}

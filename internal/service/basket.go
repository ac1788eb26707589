package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/internal/util"
)

type BasketService struct {
	Repo *repo.GormRepo
}

type AddResult struct {
	Created int
	Errors  []string
}

// Get returns the basket as a list of zero or one orders; reading never creates one.
func (s *BasketService) Get(ctx context.Context, userID uint) ([]models.Order, error) {
	basket, err := s.Repo.FindBasket(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Order{}, nil
	}
	if err != nil {
		return nil, err
	}
	basket.ComputeTotal()
	return []models.Order{*basket}, nil
}

// Add inserts each element of the items array on its own; one bad element does
// not stop the others.
func (s *BasketService) Add(ctx context.Context, userID uint, items json.RawMessage) (*AddResult, error) {
	if len(items) == 0 {
		return nil, newError(ErrValidation, MsgMissingArgs, nil)
	}
	elems, err := transport.SplitArray(items)
	if err != nil {
		return nil, newError(ErrValidation, MsgBadFormat, err)
	}
	if len(elems) == 0 {
		return nil, newError(ErrValidation, MsgMissingArgs, nil)
	}

	basket, err := s.Repo.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &AddResult{}
	var firstKind error
	reject := func(kind error, msg string) {
		if firstKind == nil {
			firstKind = kind
		}
		res.Errors = append(res.Errors, msg)
	}

	for _, e := range elems {
		var in transport.BasketItemInput
		if err := json.Unmarshal(e, &in); err != nil {
			reject(ErrValidation, MsgBadFormat)
			continue
		}
		if err := transport.Validate(in); err != nil {
			reject(ErrValidation, err.Error())
			continue
		}

		exists, err := s.Repo.ProductInfoExists(ctx, in.ProductInfo)
		if err != nil {
			return nil, err
		}
		if !exists {
			reject(ErrNotFound, fmt.Sprintf("Товар %d не найден", in.ProductInfo))
			continue
		}

		dup, err := s.Repo.BasketHasProduct(ctx, basket.ID, in.ProductInfo)
		if err != nil {
			return nil, err
		}
		if dup {
			reject(ErrConflict, MsgInBasket)
			continue
		}

		item := models.OrderItem{OrderID: basket.ID, ProductInfoID: in.ProductInfo, Quantity: in.Quantity}
		if err := s.Repo.AddOrderItem(ctx, &item); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				reject(ErrConflict, MsgInBasket)
				continue
			}
			return nil, err
		}
		res.Created++
	}

	metrics.BasketItemsAdded.Add(float64(res.Created))
	if res.Created == 0 {
		return res, newError(firstKind, res.Errors[0], nil)
	}
	return res, nil
}

// Update changes quantities of the caller's basket lines and returns how many matched.
func (s *BasketService) Update(ctx context.Context, userID uint, items json.RawMessage) (int64, error) {
	if len(items) == 0 {
		return 0, newError(ErrValidation, MsgMissingArgs, nil)
	}
	updates, err := transport.DecodeQuantityUpdates(items)
	if err != nil {
		return 0, newError(ErrValidation, MsgBadFormat, err)
	}

	var total int64
	for _, u := range updates {
		n, err := s.Repo.UpdateBasketQuantity(ctx, userID, uint(u.ID), uint(u.Quantity))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Remove deletes the listed lines of the caller's basket. Non-numeric ids are skipped.
func (s *BasketService) Remove(ctx context.Context, userID uint, items string) (int64, error) {
	ids := util.ParseIDList(items)
	if len(ids) == 0 {
		return 0, newError(ErrValidation, MsgMissingArgs, nil)
	}
	return s.Repo.DeleteBasketItems(ctx, userID, ids)
}

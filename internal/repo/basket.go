package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

func preloadOrder(q *gorm.DB) *gorm.DB {
	return preloadProductInfo(
		q.Preload("Contact").
			Preload("OrderedItems", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id ASC") }).
			Preload("OrderedItems.ProductInfo"),
		"OrderedItems.ProductInfo.",
	)
}

// FindBasket returns the user's basket with lines, or gorm.ErrRecordNotFound.
func (r *GormRepo) FindBasket(ctx context.Context, userID uint) (*models.Order, error) {
	var order models.Order
	q := r.DB.WithContext(ctx).Where("user_id = ? AND state = ?", userID, models.OrderStateBasket)
	if err := preloadOrder(q).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *GormRepo) findBasketID(ctx context.Context, userID uint) (uint, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Select("id").
		Where("user_id = ? AND state = ?", userID, models.OrderStateBasket).
		First(&order).Error
	return order.ID, err
}

// GetOrCreateBasket relies on idx_orders_one_basket to resolve concurrent creation.
func (r *GormRepo) GetOrCreateBasket(ctx context.Context, userID uint) (*models.Order, error) {
	id, err := r.findBasketID(ctx, userID)
	if err == nil {
		return &models.Order{ID: id, UserID: userID, State: models.OrderStateBasket}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	order := models.Order{UserID: userID, State: models.OrderStateBasket}
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(&order).Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		id, err := r.findBasketID(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &models.Order{ID: id, UserID: userID, State: models.OrderStateBasket}, nil
	}
	return &order, nil
}

func (r *GormRepo) BasketHasProduct(ctx context.Context, orderID, productInfoID uint) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND product_info_id = ?", orderID, productInfoID).
		Count(&n).Error
	return n > 0, err
}

// AddOrderItem returns gorm.ErrDuplicatedKey when the SKU is already in the order.
func (r *GormRepo) AddOrderItem(ctx context.Context, item *models.OrderItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

// UpdateBasketQuantity changes one line of the user's basket. A missing basket matches nothing.
func (r *GormRepo) UpdateBasketQuantity(ctx context.Context, userID, itemID, quantity uint) (int64, error) {
	basketID, err := r.findBasketID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	res := r.DB.WithContext(ctx).Model(&models.OrderItem{}).
		Where("order_id = ? AND id = ?", basketID, itemID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

// DeleteBasketItems removes the listed lines of the user's basket in one statement.
func (r *GormRepo) DeleteBasketItems(ctx context.Context, userID uint, itemIDs []uint) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	basketID, err := r.findBasketID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	res := r.DB.WithContext(ctx).
		Where("order_id = ? AND id IN ?", basketID, itemIDs).
		Delete(&models.OrderItem{})
	return res.RowsAffected, res.Error
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

// ListOrders returns the user's placed orders, newest first.
func (r *GormRepo) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	q := r.DB.WithContext(ctx).
		Where("user_id = ? AND state <> ?", userID, models.OrderStateBasket).
		Order("created_at DESC, id DESC")
	if err := preloadOrder(q).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Checkout turns the basket into a new order with one conditional UPDATE.
// Zero rows affected means the order is not the caller's basket (anymore).
func (r *GormRepo) Checkout(ctx context.Context, userID, orderID, contactID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND id = ? AND state = ?", userID, orderID, models.OrderStateBasket).
		Updates(map[string]any{"contact_id": contactID, "state": models.OrderStateNew})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) shopSKUs(userID uint) *gorm.DB {
	return r.DB.Model(&models.ProductInfo{}).
		Select("product_infos.id").
		Joins("JOIN shops ON shops.id = product_infos.shop_id").
		Where("shops.user_id = ?", userID)
}

// ListShopOrders returns placed orders containing the supplier's SKUs.
// Only the supplier's own lines are loaded.
func (r *GormRepo) ListShopOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	withShopLines := r.DB.Model(&models.OrderItem{}).
		Select("order_items.order_id").
		Where("order_items.product_info_id IN (?)", r.shopSKUs(userID))

	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Where("state <> ? AND id IN (?)", models.OrderStateBasket, withShopLines).
		Preload("Contact").
		Preload("OrderedItems", "product_info_id IN (?)", r.shopSKUs(userID)).
		Preload("OrderedItems.ProductInfo").
		Preload("OrderedItems.ProductInfo.Shop").
		Preload("OrderedItems.ProductInfo.Product.Category").
		Preload("OrderedItems.ProductInfo.ProductParameters.Parameter").
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

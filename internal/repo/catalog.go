package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

type ProductFilter struct {
	ShopID     *uint
	CategoryID *uint
	// IDs restricts the result to these SKUs when non-nil; an empty slice matches nothing.
	IDs []uint
	// NameContains is a case-insensitive substring match on the product name.
	NameContains string
}

func (r *GormRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cats []models.Category
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *GormRepo) ListActiveShops(ctx context.Context) ([]models.Shop, error) {
	var shops []models.Shop
	if err := r.DB.WithContext(ctx).Where("state = ?", true).Order("id ASC").Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

func preloadProductInfo(q *gorm.DB, prefix string) *gorm.DB {
	return q.
		Preload(prefix + "Shop").
		Preload(prefix + "Product.Category").
		Preload(prefix + "ProductParameters.Parameter")
}

// SearchProductInfos lists SKUs of shops that accept orders.
func (r *GormRepo) SearchProductInfos(ctx context.Context, f ProductFilter) ([]models.ProductInfo, error) {
	q := r.DB.WithContext(ctx).Model(&models.ProductInfo{}).
		Joins("JOIN shops ON shops.id = product_infos.shop_id AND shops.state = ?", true).
		Joins("JOIN products ON products.id = product_infos.product_id")

	if f.ShopID != nil {
		q = q.Where("product_infos.shop_id = ?", *f.ShopID)
	}
	if f.CategoryID != nil {
		q = q.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.NameContains != "" {
		q = q.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(f.NameContains)+"%")
	}
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []models.ProductInfo{}, nil
		}
		q = q.Where("product_infos.id IN ?", f.IDs)
	}

	var infos []models.ProductInfo
	if err := preloadProductInfo(q, "").Order("product_infos.id ASC").Find(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}

func (r *GormRepo) ProductInfosByShop(ctx context.Context, shopID uint) ([]models.ProductInfo, error) {
	var infos []models.ProductInfo
	q := r.DB.WithContext(ctx).Where("shop_id = ?", shopID)
	if err := preloadProductInfo(q, "").Order("id ASC").Find(&infos).Error; err != nil {
		return nil, err
	}
	return infos, nil
}

func (r *GormRepo) ProductInfoExists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.ProductInfo{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *GormRepo) GetShopByUser(ctx context.Context, userID uint) (*models.Shop, error) {
	var shop models.Shop
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// SetShopState updates every shop owned by the user and reports how many matched.
func (r *GormRepo) SetShopState(ctx context.Context, userID uint, state bool) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Shop{}).Where("user_id = ?", userID).Update("state", state)
	return res.RowsAffected, res.Error
}

package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

// GetOrCreateShop looks the shop up by name only. A new shop is owned by userID and accepts orders.
func (r *GormRepo) GetOrCreateShop(ctx context.Context, name string, userID uint, url string) (*models.Shop, bool, error) {
	db := r.DB.WithContext(ctx)

	var shop models.Shop
	err := db.Where("name = ?", name).First(&shop).Error
	if err == nil {
		if url != "" && shop.URL != url {
			if err := db.Model(&shop).Update("url", url).Error; err != nil {
				return nil, false, err
			}
		}
		return &shop, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	shop = models.Shop{Name: name, URL: url, UserID: &userID, State: true}
	if err := db.Create(&shop).Error; err != nil {
		return nil, false, err
	}
	return &shop, true, nil
}

// AttachCategory creates the category if its id is unknown (an existing name is kept) and links it to the shop.
func (r *GormRepo) AttachCategory(ctx context.Context, shopID, categoryID uint, name string) error {
	db := r.DB.WithContext(ctx)

	cat := models.Category{ID: categoryID, Name: name}
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(&cat).Error; err != nil {
		return err
	}

	return db.Table("category_shops").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]any{"category_id": categoryID, "shop_id": shopID}).Error
}

// DeleteShopProductInfos drops the shop's catalogue; basket lines on those SKUs go with it.
func (r *GormRepo) DeleteShopProductInfos(ctx context.Context, shopID uint) (int64, error) {
	db := r.DB.WithContext(ctx)

	sub := db.Model(&models.ProductInfo{}).Select("id").Where("shop_id = ?", shopID)
	if err := db.Where("product_info_id IN (?)", sub).Delete(&models.ProductParameter{}).Error; err != nil {
		return 0, err
	}

	res := db.Where("shop_id = ?", shopID).Delete(&models.ProductInfo{})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) GetOrCreateProduct(ctx context.Context, name string, categoryID uint) (*models.Product, error) {
	db := r.DB.WithContext(ctx)

	var p models.Product
	err := db.Where("name = ? AND category_id = ?", name, categoryID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	p = models.Product{Name: name, CategoryID: categoryID}
	if err := db.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) GetOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error) {
	var p models.Parameter
	if err := r.DB.WithContext(ctx).Where(models.Parameter{Name: name}).FirstOrCreate(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormRepo) CreateProductInfo(ctx context.Context, info *models.ProductInfo) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(info).Error
}

func (r *GormRepo) CreateProductParameters(ctx context.Context, params []models.ProductParameter) error {
	if len(params) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(&params).Error
}

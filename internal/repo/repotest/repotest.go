// Package repotest opens throwaway in-memory databases for tests.
package repotest

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func SeedUser(t testing.TB, db *gorm.DB, email, typ string) models.User {
	t.Helper()
	u := models.User{Email: email, Name: email, Type: typ}
	require.NoError(t, db.Create(&u).Error)
	return u
}

type Catalog struct {
	Owner    models.User
	Shop     models.Shop
	Category models.Category
	Phone    models.ProductInfo
	Case     models.ProductInfo
}

// SeedCatalog creates one active shop with two SKUs: 100.00 and 25.50.
func SeedCatalog(t testing.TB, db *gorm.DB, shopName string) Catalog {
	t.Helper()

	owner := SeedUser(t, db, shopName+"@shop.test", models.UserTypeShop)
	shop := models.Shop{Name: shopName, UserID: &owner.ID, State: true}
	require.NoError(t, db.Create(&shop).Error)

	cat := models.Category{Name: "Смартфоны"}
	require.NoError(t, db.FirstOrCreate(&cat, models.Category{ID: 224}).Error)
	require.NoError(t, db.Model(&shop).Association("Categories").Append(&cat))

	param := models.Parameter{Name: "Цвет"}
	require.NoError(t, db.FirstOrCreate(&param, models.Parameter{Name: "Цвет"}).Error)

	mk := func(name string, ext uint, price string) models.ProductInfo {
		p := models.Product{Name: name, CategoryID: cat.ID}
		require.NoError(t, db.FirstOrCreate(&p, models.Product{Name: name, CategoryID: cat.ID}).Error)
		info := models.ProductInfo{
			ProductID:  p.ID,
			ShopID:     shop.ID,
			ExternalID: ext,
			Model:      "model/" + name,
			Price:      decimal.RequireFromString(price),
			PriceRRC:   decimal.RequireFromString(price),
			Quantity:   10,
		}
		require.NoError(t, db.Omit("Product", "Shop", "ProductParameters").Create(&info).Error)
		pp := models.ProductParameter{ProductInfoID: info.ID, ParameterID: param.ID, Value: "черный"}
		require.NoError(t, db.Omit("Parameter").Create(&pp).Error)
		return info
	}

	return Catalog{
		Owner:    owner,
		Shop:     shop,
		Category: cat,
		Phone:    mk("Смартфон "+shopName, 4216292, "100.00"),
		Case:     mk("Чехол "+shopName, 4216313, "25.50"),
	}
}

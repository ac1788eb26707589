package repo_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/repo/repotest"
)

func TestSearchProductInfos_Filters(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	a := repotest.SeedCatalog(t, db, "alpha")
	b := repotest.SeedCatalog(t, db, "beta")

	all, err := r.SearchProductInfos(ctx, repo.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)
	require.NotNil(t, all[0].Product)
	require.NotNil(t, all[0].Product.Category)
	assert.Equal(t, "Смартфоны", all[0].Product.Category.Name)
	require.Len(t, all[0].ProductParameters, 1)
	assert.Equal(t, "Цвет", all[0].ProductParameters[0].Parameter.Name)

	byShop, err := r.SearchProductInfos(ctx, repo.ProductFilter{ShopID: &a.Shop.ID})
	require.NoError(t, err)
	assert.Len(t, byShop, 2)

	byIDs, err := r.SearchProductInfos(ctx, repo.ProductFilter{IDs: []uint{b.Case.ID}})
	require.NoError(t, err)
	require.Len(t, byIDs, 1)
	assert.Equal(t, b.Case.ID, byIDs[0].ID)

	none, err := r.SearchProductInfos(ctx, repo.ProductFilter{IDs: []uint{}})
	require.NoError(t, err)
	assert.Empty(t, none)

	n, err := r.SetShopState(ctx, b.Owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := r.SearchProductInfos(ctx, repo.ProductFilter{CategoryID: &a.Category.ID})
	require.NoError(t, err)
	assert.Len(t, active, 2, "inactive shop is hidden")

	shops, err := r.ListActiveShops(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 1)
	assert.Equal(t, "alpha", shops[0].Name)
}

func TestBasketLifecycle(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	cat := repotest.SeedCatalog(t, db, "alpha")
	buyer := repotest.SeedUser(t, db, "buyer@test", models.UserTypeBuyer)

	_, err := r.FindBasket(ctx, buyer.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	basket, err := r.GetOrCreateBasket(ctx, buyer.ID)
	require.NoError(t, err)
	again, err := r.GetOrCreateBasket(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, basket.ID, again.ID)

	require.NoError(t, r.AddOrderItem(ctx, &models.OrderItem{OrderID: basket.ID, ProductInfoID: cat.Phone.ID, Quantity: 2}))
	line := models.OrderItem{OrderID: basket.ID, ProductInfoID: cat.Case.ID, Quantity: 1}
	require.NoError(t, r.AddOrderItem(ctx, &line))

	err = r.AddOrderItem(ctx, &models.OrderItem{OrderID: basket.ID, ProductInfoID: cat.Phone.ID, Quantity: 1})
	require.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	has, err := r.BasketHasProduct(ctx, basket.ID, cat.Phone.ID)
	require.NoError(t, err)
	assert.True(t, has)

	n, err := r.UpdateBasketQuantity(ctx, buyer.ID, line.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	loaded, err := r.FindBasket(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, loaded.OrderedItems, 2)
	loaded.ComputeTotal()
	assert.Equal(t, "302", loaded.TotalSum.String())

	n, err = r.DeleteBasketItems(ctx, buyer.ID, []uint{line.ID, 9999})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	stranger := repotest.SeedUser(t, db, "other@test", models.UserTypeBuyer)
	n, err = r.DeleteBasketItems(ctx, stranger.ID, []uint{loaded.OrderedItems[0].ID})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCheckout_OnlyOnce(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	buyer := repotest.SeedUser(t, db, "buyer@test", models.UserTypeBuyer)
	contact := models.Contact{UserID: buyer.ID, City: "Москва", Street: "Тверская", Phone: "+7900"}
	require.NoError(t, r.CreateContact(ctx, &contact))

	basket, err := r.GetOrCreateBasket(ctx, buyer.ID)
	require.NoError(t, err)

	n, err := r.Checkout(ctx, buyer.ID, basket.ID, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = r.Checkout(ctx, buyer.ID, basket.ID, contact.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	orders, err := r.ListOrders(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStateNew, orders[0].State)
	require.NotNil(t, orders[0].Contact)
	assert.Equal(t, "Москва", orders[0].Contact.City)

	next, err := r.GetOrCreateBasket(ctx, buyer.ID)
	require.NoError(t, err)
	assert.NotEqual(t, basket.ID, next.ID)
}

func TestCheckout_SingleConditionalUpdate(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "orders" SET "contact_id"=$1,"state"=$2 WHERE`)).
		WithArgs(7, "new", 3, 11, "basket").
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.New(db).Checkout(context.Background(), 3, 11, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShopOrders_OnlySupplierLines(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	a := repotest.SeedCatalog(t, db, "alpha")
	b := repotest.SeedCatalog(t, db, "beta")
	buyer := repotest.SeedUser(t, db, "buyer@test", models.UserTypeBuyer)
	contact := models.Contact{UserID: buyer.ID, City: "Казань", Street: "Баумана", Phone: "+7901"}
	require.NoError(t, r.CreateContact(ctx, &contact))

	basket, err := r.GetOrCreateBasket(ctx, buyer.ID)
	require.NoError(t, err)
	require.NoError(t, r.AddOrderItem(ctx, &models.OrderItem{OrderID: basket.ID, ProductInfoID: a.Phone.ID, Quantity: 1}))
	require.NoError(t, r.AddOrderItem(ctx, &models.OrderItem{OrderID: basket.ID, ProductInfoID: b.Case.ID, Quantity: 2}))

	orders, err := r.ListShopOrders(ctx, a.Owner.ID)
	require.NoError(t, err)
	assert.Empty(t, orders, "basket is not visible to suppliers")

	_, err = r.Checkout(ctx, buyer.ID, basket.ID, contact.ID)
	require.NoError(t, err)

	orders, err = r.ListShopOrders(ctx, b.Owner.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].OrderedItems, 1)
	assert.Equal(t, b.Case.ID, orders[0].OrderedItems[0].ProductInfoID)
	orders[0].ComputeTotal()
	assert.Equal(t, "51", orders[0].TotalSum.String())
}

func TestImportWrites(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()

	owner := repotest.SeedUser(t, db, "shop@test", models.UserTypeShop)

	shop, created, err := r.GetOrCreateShop(ctx, "Связной", owner.ID, "https://feed.test/a.yaml")
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, shop.State)

	same, created, err := r.GetOrCreateShop(ctx, "Связной", owner.ID, "https://feed.test/b.yaml")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, shop.ID, same.ID)

	require.NoError(t, r.AttachCategory(ctx, shop.ID, 224, "Смартфоны"))
	require.NoError(t, r.AttachCategory(ctx, shop.ID, 224, "Телефоны"))

	cats, err := r.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)
	assert.Equal(t, "Смартфоны", cats[0].Name, "existing category name is kept")

	p1, err := r.GetOrCreateProduct(ctx, "iPhone", 224)
	require.NoError(t, err)
	p2, err := r.GetOrCreateProduct(ctx, "iPhone", 224)
	require.NoError(t, err)
	assert.Equal(t, p1.ID, p2.ID)

	info := models.ProductInfo{ProductID: p1.ID, ShopID: shop.ID, ExternalID: 1, Quantity: 3}
	require.NoError(t, r.CreateProductInfo(ctx, &info))
	param, err := r.GetOrCreateParameter(ctx, "Цвет")
	require.NoError(t, err)
	require.NoError(t, r.CreateProductParameters(ctx, []models.ProductParameter{
		{ProductInfoID: info.ID, ParameterID: param.ID, Value: "белый"},
	}))

	n, err := r.DeleteShopProductInfos(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var left int64
	require.NoError(t, db.Model(&models.ProductParameter{}).Count(&left).Error)
	assert.Zero(t, left)
}

func TestWithTx_RollsBack(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "shop@test", models.UserTypeShop)

	err := r.WithTx(ctx, func(tx *repo.GormRepo) error {
		if _, _, err := tx.GetOrCreateShop(ctx, "Временный", owner.ID, ""); err != nil {
			return err
		}
		return gorm.ErrInvalidData
	})
	require.ErrorIs(t, err, gorm.ErrInvalidData)

	var n int64
	require.NoError(t, db.Model(&models.Shop{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestImportRuns_Paginated(t *testing.T) {
	db := repotest.NewDB(t)
	r := repo.New(db)
	ctx := context.Background()
	owner := repotest.SeedUser(t, db, "shop@test", models.UserTypeShop)

	for i := 0; i < 3; i++ {
		run := models.ImportRun{UserID: owner.ID, URL: "https://feed.test"}
		require.NoError(t, r.CreateImportRun(ctx, &run))
		run.Success = true
		require.NoError(t, r.SaveImportRun(ctx, &run))
	}

	runs, total, err := r.ListImportRuns(ctx, owner.ID, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, runs, 2)
	assert.True(t, runs[0].Success)
}

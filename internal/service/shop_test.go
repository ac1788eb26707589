package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo/repotest"
	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
)

func TestShop_StateVocabulary(t *testing.T) {
	r, db := newRepo(t)
	svc := &service.ShopService{Repo: r}
	ctx := context.Background()
	cat := repotest.SeedCatalog(t, db, "alpha")

	tests := []struct {
		in   string
		want bool
	}{
		{"off", false}, {"YES", true}, {"0", false}, {"t", true}, {"n", false}, {"on", true},
	}
	for _, tt := range tests {
		require.NoError(t, svc.SetState(ctx, cat.Owner.ID, tt.in), tt.in)
		shop, err := svc.State(ctx, cat.Owner.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, shop.State, tt.in)
	}

	err := svc.SetState(ctx, cat.Owner.ID, "maybe")
	require.ErrorIs(t, err, service.ErrValidation)
	assert.Equal(t, `Неверное значение состояния: "maybe"`, service.Message(err))

	err = svc.SetState(ctx, cat.Owner.ID, "")
	assert.Equal(t, service.MsgMissingArgs, service.Message(err))

	buyer := repotest.SeedUser(t, db, "buyer@test", models.UserTypeBuyer)
	_, err = svc.State(ctx, buyer.ID)
	require.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, service.MsgShopNotFound, service.Message(err))
}

func TestShop_OrdersShowOwnLines(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	a := repotest.SeedCatalog(t, db, "alpha")
	b := repotest.SeedCatalog(t, db, "beta")
	buyer := repotest.SeedUser(t, db, "buyer@test", models.UserTypeBuyer)
	contact := models.Contact{UserID: buyer.ID, City: "Казань", Street: "Баумана", Phone: "+7901"}
	require.NoError(t, r.CreateContact(ctx, &contact))

	baskets := &service.BasketService{Repo: r}
	_, err := baskets.Add(ctx, buyer.ID, json.RawMessage(fmt.Sprintf(`[{"product_info":%d,"quantity":2},{"product_info":%d,"quantity":4}]`, a.Phone.ID, b.Case.ID)))
	require.NoError(t, err)
	current, err := baskets.Get(ctx, buyer.ID)
	require.NoError(t, err)

	orders := &service.OrderService{Repo: r, Dispatcher: &fakeDispatcher{}}
	require.NoError(t, orders.Checkout(ctx, buyer.ID, transport.CheckoutRequest{
		ID: transport.DigitID(current[0].ID), Contact: transport.DigitID(contact.ID),
	}))

	shops := &service.ShopService{Repo: r}
	got, err := shops.Orders(ctx, a.Owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "200", got[0].TotalSum.String())
	assert.Equal(t, buyer.ID, got[0].UserID)
}

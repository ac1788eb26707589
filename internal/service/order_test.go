package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/repo/repotest"
	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
)

type checkoutFixture struct {
	orders  *service.OrderService
	disp    *fakeDispatcher
	buyer   models.User
	contact models.Contact
	basket  models.Order
}

func newCheckoutFixture(t *testing.T) checkoutFixture {
	t.Helper()
	r, db := newRepo(t)
	ctx := context.Background()

	cat := repotest.SeedCatalog(t, db, "alpha")
	buyer := repotest.SeedUser(t, db, "buyer@test", models.UserTypeBuyer)
	contact := models.Contact{UserID: buyer.ID, City: "Москва", Street: "Тверская", Phone: "+7900"}
	require.NoError(t, r.CreateContact(ctx, &contact))

	baskets := &service.BasketService{Repo: r}
	_, err := baskets.Add(ctx, buyer.ID, json.RawMessage(fmt.Sprintf(`[{"product_info":%d,"quantity":3}]`, cat.Case.ID)))
	require.NoError(t, err)
	current, err := baskets.Get(ctx, buyer.ID)
	require.NoError(t, err)

	disp := &fakeDispatcher{}
	return checkoutFixture{
		orders:  &service.OrderService{Repo: r, Dispatcher: disp, NotifyDelay: 5 * time.Minute},
		disp:    disp,
		buyer:   buyer,
		contact: contact,
		basket:  current[0],
	}
}

func TestCheckout_PlacesOrderAndSchedulesNotification(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := context.Background()

	req := transport.CheckoutRequest{ID: transport.DigitID(fx.basket.ID), Contact: transport.DigitID(fx.contact.ID)}
	require.NoError(t, fx.orders.Checkout(ctx, fx.buyer.ID, req))

	assert.Equal(t, []scheduled{{
		Title:   "Уведомление о смене статуса заказа",
		Message: "Заказ сформирован.",
		Email:   "buyer@test",
		Delay:   5 * time.Minute,
	}}, fx.disp.Sent())

	orders, err := fx.orders.List(ctx, fx.buyer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.OrderStateNew, orders[0].State)
	assert.Equal(t, "76.5", orders[0].TotalSum.String())
	require.NotNil(t, orders[0].Contact)

	err = fx.orders.Checkout(ctx, fx.buyer.ID, req)
	require.ErrorIs(t, err, service.ErrNoOp)
	assert.Equal(t, service.MsgMissingArgs, service.Message(err))
	assert.Len(t, fx.disp.Sent(), 1)
}

func TestCheckout_Rejections(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := context.Background()
	basketID := transport.DigitID(fx.basket.ID)

	tests := []struct {
		name string
		user uint
		req  transport.CheckoutRequest
		kind error
		msg  string
	}{
		{name: "missing contact", user: fx.buyer.ID, req: transport.CheckoutRequest{ID: basketID}, kind: service.ErrValidation, msg: service.MsgMissingArgs},
		{name: "foreign contact", user: fx.buyer.ID, req: transport.CheckoutRequest{ID: basketID, Contact: 999}, kind: service.ErrValidation, msg: service.MsgBadArgs},
		{name: "unknown order", user: fx.buyer.ID, req: transport.CheckoutRequest{ID: 999, Contact: transport.DigitID(fx.contact.ID)}, kind: service.ErrNoOp, msg: service.MsgMissingArgs},
		{name: "someone else", user: fx.buyer.ID + 100, req: transport.CheckoutRequest{ID: basketID, Contact: transport.DigitID(fx.contact.ID)}, kind: service.ErrValidation, msg: service.MsgBadArgs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fx.orders.Checkout(ctx, tt.user, tt.req)
			require.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.msg, service.Message(err))
		})
	}
	assert.Empty(t, fx.disp.Sent())
}

func TestCheckout_ConcurrentSubmissionsPlaceOnce(t *testing.T) {
	fx := newCheckoutFixture(t)
	ctx := context.Background()
	req := transport.CheckoutRequest{ID: transport.DigitID(fx.basket.ID), Contact: transport.DigitID(fx.contact.ID)}

	const attempts = 5
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = fx.orders.Checkout(ctx, fx.buyer.ID, req)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, service.ErrNoOp)
	}
	assert.Equal(t, 1, ok)
	assert.Len(t, fx.disp.Sent(), 1)
}

func TestCheckout_DispatcherFailureDoesNotFailRequest(t *testing.T) {
	fx := newCheckoutFixture(t)
	fx.disp.err = errors.New("broker down")

	req := transport.CheckoutRequest{ID: transport.DigitID(fx.basket.ID), Contact: transport.DigitID(fx.contact.ID)}
	require.NoError(t, fx.orders.Checkout(context.Background(), fx.buyer.ID, req))
}

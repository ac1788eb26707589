package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "order.list"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "list_orders_error", err)
	}

	orders, err := h.Svc.List(ctx, userID)
	if err != nil {
		return fail(c, l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "order.checkout"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "checkout_error", err)
	}

	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "checkout_error", service.MsgMissingArgs, err)
	}

	if err := h.Svc.Checkout(ctx, userID, req); err != nil {
		return fail(c, l, "checkout_error", err)
	}

	l.Info("checkout_success", zap.Uint("order_id", uint(req.ID)))
	return c.JSON(http.StatusOK, transport.OK())
}

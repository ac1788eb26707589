package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type BasketHTTP struct {
	Svc *service.BasketService
}

func (h *BasketHTTP) GetBasket(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "basket.get"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "get_basket_error", err)
	}

	orders, err := h.Svc.Get(ctx, userID)
	if err != nil {
		return fail(c, l, "get_basket_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *BasketHTTP) AddItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "basket.add"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "add_basket_error", err)
	}

	items, err := itemsParam(c)
	if err != nil {
		return badRequest(c, l, "add_basket_error", service.MsgBadFormat, err)
	}

	res, err := h.Svc.Add(ctx, userID, items)
	if err != nil {
		return fail(c, l, "add_basket_error", err)
	}

	l.Info("add_basket_success", zap.Int("created", res.Created), zap.Int("rejected", len(res.Errors)))
	out := transport.Response{
		Status:  true,
		Message: fmt.Sprintf("Товары %d добавлены в корзину", res.Created),
	}
	if len(res.Errors) > 0 {
		out.Errors = res.Errors
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BasketHTTP) UpdateItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "basket.update"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "update_basket_error", err)
	}

	items, err := itemsParam(c)
	if err != nil {
		return badRequest(c, l, "update_basket_error", service.MsgBadFormat, err)
	}

	n, err := h.Svc.Update(ctx, userID, items)
	if err != nil {
		return fail(c, l, "update_basket_error", err)
	}
	return c.JSON(http.StatusOK, transport.Count(labelUpdated, n))
}

func (h *BasketHTTP) RemoveItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "basket.remove"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "remove_basket_error", err)
	}

	items, err := itemsParam(c)
	if err != nil {
		return badRequest(c, l, "remove_basket_error", service.MsgBadFormat, err)
	}

	n, err := h.Svc.Remove(ctx, userID, string(items))
	if err != nil {
		return fail(c, l, "remove_basket_error", err)
	}
	return c.JSON(http.StatusOK, transport.Count(labelDeleted, n))
}

package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/internal/util"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

// ShopHTTP serves the supplier side: feed import, availability and incoming orders.
type ShopHTTP struct {
	Import *service.ImportService
	Shops  *service.ShopService
}

func (h *ShopHTTP) ImportFeed(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "shop.import"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "import_feed_error", err)
	}

	var req transport.ShopUpdateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "import_feed_error", service.MsgBadFormat, err)
	}

	run, err := h.Import.Import(ctx, userID, req.URL)
	if err != nil {
		if errors.Is(err, service.ErrValidation) && service.Message(err) == service.MsgMissingArgs {
			return fail(c, l, "import_feed_error", err)
		}
		return failWith(c, l, "import_feed_error", err, transport.FailError)
	}

	l.Info("import_feed_success",
		zap.Uint("run_id", run.ID),
		zap.Int("goods", run.Goods),
		zap.Int("categories", run.Categories),
	)
	return c.JSON(http.StatusOK, transport.OK())
}

func (h *ShopHTTP) ListImports(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "shop.imports"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "list_imports_error", err)
	}

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	runs, total, err := h.Import.Runs(ctx, userID, offset, limit)
	if err != nil {
		return fail(c, l, "list_imports_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": runs,
		"meta": util.Meta(page, limit, offset, total),
	})
}

func (h *ShopHTTP) GetState(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "shop.get_state"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "get_state_error", err)
	}

	shop, err := h.Shops.State(ctx, userID)
	if err != nil {
		return fail(c, l, "get_state_error", err)
	}
	return c.JSON(http.StatusOK, shop)
}

func (h *ShopHTTP) SetState(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "shop.set_state"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "set_state_error", err)
	}

	var req transport.ShopStateRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, l, "set_state_error", service.MsgBadFormat, err)
	}

	if err := h.Shops.SetState(ctx, userID, string(req.State)); err != nil {
		return fail(c, l, "set_state_error", err)
	}

	l.Info("set_state_success", zap.String("state", string(req.State)))
	return c.JSON(http.StatusOK, transport.OK())
}

func (h *ShopHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "shop.orders"))

	userID, err := GetID(c)
	if err != nil {
		return unauthorized(c, l, "shop_orders_error", err)
	}

	orders, err := h.Shops.Orders(ctx, userID)
	if err != nil {
		return fail(c, l, "shop_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Skotchmaster/shop_orders/internal/service"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "catalog.categories"))

	cats, err := h.Svc.Categories(ctx)
	if err != nil {
		return fail(c, l, "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *CatalogHTTP) ListShops(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "catalog.shops"))

	shops, err := h.Svc.Shops(ctx)
	if err != nil {
		return fail(c, l, "list_shops_error", err)
	}
	return c.JSON(http.StatusOK, shops)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With(zap.String("handler", "catalog.products"))

	shopID, ok := optionalID(c, "shop_id")
	if !ok {
		return badRequest(c, l, "search_products_error", service.MsgBadArgs, nil)
	}
	categoryID, ok := optionalID(c, "category_id")
	if !ok {
		return badRequest(c, l, "search_products_error", service.MsgBadArgs, nil)
	}

	infos, err := h.Svc.Products(ctx, service.ProductQuery{
		ShopID:     shopID,
		CategoryID: categoryID,
		Query:      c.QueryParam("q"),
	})
	if err != nil {
		return fail(c, l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, infos)
}

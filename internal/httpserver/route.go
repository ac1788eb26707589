package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/pkg/db"
	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

type Deps struct {
	DB        *gorm.DB
	JWTSecret []byte

	Catalog *CatalogHTTP
	Shop    *ShopHTTP
	Basket  *BasketHTTP
	Order   *OrderHTTP
	User    *UserHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", metrics.Handler())

	authMW := middleware.NewAuthMiddleware(d.JWTSecret)

	v1 := e.Group("/api/v1")

	public := v1.Group("/shops")
	public.GET("/categories", d.Catalog.ListCategories)
	public.GET("/shops", d.Catalog.ListShops)
	public.GET("/products", d.Catalog.SearchProducts)

	shop := v1.Group("/shops", authMW.RequireAuth, middleware.RequireRole(models.UserTypeShop))
	shop.POST("/update", d.Shop.ImportFeed)
	shop.GET("/imports", d.Shop.ListImports)
	shop.GET("/state", d.Shop.GetState)
	shop.POST("/state", d.Shop.SetState)
	shop.GET("/orders", d.Shop.ListOrders)

	basket := v1.Group("/basket", authMW.RequireAuth)
	basket.GET("", d.Basket.GetBasket)
	basket.POST("", d.Basket.AddItems)
	basket.PUT("", d.Basket.UpdateItems)
	basket.DELETE("", d.Basket.RemoveItems)

	order := v1.Group("/order", authMW.RequireAuth)
	order.GET("", d.Order.ListOrders)
	order.POST("", d.Order.Checkout)

	user := v1.Group("/user", authMW.RequireAuth)
	user.GET("/me", d.User.Me)
	user.GET("/contact", d.User.ListContacts)
	user.POST("/contact", d.User.CreateContact)
	user.GET("/contact/:id", d.User.GetContact)
	user.PUT("/contact/:id", d.User.UpdateContact)
	user.DELETE("/contact/:id", d.User.DeleteContact)
}

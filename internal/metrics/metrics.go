package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	FeedImportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_imports_total",
			Help: "Supplier price list imports by result",
		},
		[]string{"result"},
	)

	BasketItemsAdded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "basket_items_added_total",
			Help: "Order lines added to baskets",
		},
	)

	OrdersCheckedOut = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "orders_checked_out_total",
			Help: "Baskets turned into new orders",
		},
	)

	NotificationsScheduled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_scheduled_total",
			Help: "Notifications handed to the dispatcher by result",
		},
		[]string{"result"},
	)

	NotificationsSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Notification delivery attempts that finished, by result",
		},
		[]string{"result"},
	)
)

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// Middleware must wrap the error-handling middleware so the final status is known.
func Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil && !c.Response().Committed {
			status = http.StatusInternalServerError
			var he *echo.HTTPError
			if errors.As(err, &he) {
				status = he.Code
			}
		}

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		labels := []string{c.Request().Method, path, strconv.Itoa(status)}
		HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

		return err
	}
}

func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/notify"
	"github.com/Skotchmaster/shop_orders/internal/repo"
	"github.com/Skotchmaster/shop_orders/internal/transport"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

const (
	NotifyTitle   = "Уведомление о смене статуса заказа"
	NotifyMessage = "Заказ сформирован."
)

type OrderService struct {
	Repo        *repo.GormRepo
	Dispatcher  notify.Dispatcher
	NotifyDelay time.Duration
}

func (s *OrderService) List(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.Repo.ListOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].ComputeTotal()
	}
	return orders, nil
}

// Checkout places the caller's basket. Anything that is not the caller's basket
// leaves the database untouched and reports ErrNoOp.
func (s *OrderService) Checkout(ctx context.Context, userID uint, req transport.CheckoutRequest) error {
	if req.ID == 0 || req.Contact == 0 {
		return newError(ErrValidation, MsgMissingArgs, nil)
	}

	if _, err := s.Repo.GetContact(ctx, userID, uint(req.Contact)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(ErrValidation, MsgBadArgs, err)
		}
		return err
	}

	n, err := s.Repo.Checkout(ctx, userID, uint(req.ID), uint(req.Contact))
	if err != nil {
		return err
	}
	if n == 0 {
		return newError(ErrNoOp, MsgMissingArgs, nil)
	}

	metrics.OrdersCheckedOut.Inc()
	s.notifyPlaced(ctx, userID, uint(req.ID))
	return nil
}

// notifyPlaced never fails the checkout.
func (s *OrderService) notifyPlaced(ctx context.Context, userID, orderID uint) {
	l := logging.FromContext(ctx).With(zap.Uint("order_id", orderID))
	ctx = context.WithoutCancel(ctx)

	user, err := s.Repo.GetUser(ctx, userID)
	if err == nil {
		err = s.Dispatcher.Schedule(ctx, NotifyTitle, NotifyMessage, user.Email, s.NotifyDelay)
	}
	metrics.NotificationsScheduled.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		l.Error("notification_schedule_error", zap.Error(err))
		return
	}
	l.Info("notification_scheduled", zap.Duration("delay", s.NotifyDelay))
}

// Package notify delivers e-mail notifications after a delay, outside the request path.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Email     string    `json:"email"`
	NotBefore time.Time `json:"not_before"`
}

func NewNotification(title, message, email string, delay time.Duration) Notification {
	return Notification{
		ID:        uuid.New(),
		Title:     title,
		Message:   message,
		Email:     email,
		NotBefore: time.Now().UTC().Add(delay),
	}
}

// Dispatcher enqueues a notification and returns without waiting for delivery.
type Dispatcher interface {
	Schedule(ctx context.Context, title, message, email string, delay time.Duration) error
	Close() error
}

type Mailer interface {
	Send(ctx context.Context, n Notification) error
}

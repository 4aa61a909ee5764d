package notification

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists workflow notifications. Listings are scoped by the
// target role and return newest first with the study context joined in.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListByUserType(ctx context.Context, userType string, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userType string) (int, error)
	UnreadCount(ctx context.Context, userType string) (int, error)
}

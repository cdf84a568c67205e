package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/KhanhRomVN/foocipe-user-service/internal/domain"
	"github.com/KhanhRomVN/foocipe-user-service/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, input domain.CreateNotificationInput) error
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListUnread(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID string) error
}

type pushPublisher interface {
	Publish(ctx context.Context, subject, message string) error
}

type service struct {
	repo      notificationStore
	publisher pushPublisher // nil disables push
}

func NewService(repo notificationStore, publisher pushPublisher) Service {
	return &service{repo: repo, publisher: publisher}
}

// Create fans the notification out into one record per target user, then
// publishes to the push topic. Publish failures are logged and swallowed:
// the side channel never fails the account operation that triggered it.
func (s *service) Create(ctx context.Context, input domain.CreateNotificationInput) error {
	now := time.Now().UTC()
	for _, userID := range input.TargetIDs {
		n := &domain.Notification{
			NotificationID: id.New(),
			UserID:         userID,
			Title:          input.Title,
			Content:        input.Content,
			Type:           input.Type,
			CanDelete:      false,
			CanMarkAsRead:  true,
			IsRead:         false,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.repo.Put(ctx, n); err != nil {
			return err
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, input.Title, input.Content); err != nil {
			slog.Warn("push publish failed", "title", input.Title, "err", err)
		}
	}
	return nil
}

func (s *service) ListUnread(ctx context.Context, userID string) ([]domain.Notification, error) {
	return s.repo.ListUnread(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return domain.NotFound("NOTIFICATION_NOT_FOUND", "notification not found")
	}
	if !n.CanMarkAsRead {
		return domain.BadRequest("NOTIFICATION_LOCKED", "this notification cannot be marked as read")
	}
	return s.repo.MarkAsRead(ctx, notificationID)
}

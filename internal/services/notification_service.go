package services

import (
	"context"
	"log/slog"

	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService creates notifications and serves a user's inbox.
type NotificationService struct {
	notifications repositories.NotificationRepository
	users         repositories.UserRepository
	logger        *slog.Logger
}

func NewNotificationService(notifications repositories.NotificationRepository, users repositories.UserRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{notifications: notifications, users: users, logger: logger}
}

// Emit records an unread notification from -> to.
func (s *NotificationService) Emit(ctx context.Context, kind models.NotificationType, from, to primitive.ObjectID) error {
	n := &models.Notification{Type: kind, From: from, To: to}
	if err := s.notifications.CreateNotification(ctx, n); err != nil {
		return err
	}
	metrics.NotificationsEmitted.WithLabelValues(string(kind)).Inc()
	return nil
}

// List returns the caller's notifications newest first, then marks the returned
// ones read. The returned views reflect the state before marking.
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID) ([]models.NotificationView, error) {
	ns, err := s.notifications.GetByRecipientID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	views, err := s.views(ctx, ns)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	ids := make([]primitive.ObjectID, 0, len(ns))
	for _, n := range ns {
		if !n.Read {
			ids = append(ids, n.ID)
		}
	}
	if err := s.notifications.MarkAsRead(ctx, userID, ids); err != nil {
		return nil, models.NewInternalError(err)
	}
	return views, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.notifications.GetUnreadCount(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// DeleteAll empties the caller's inbox.
func (s *NotificationService) DeleteAll(ctx context.Context, userID primitive.ObjectID) error {
	n, err := s.notifications.DeleteByRecipientID(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	s.logger.DebugContext(ctx, "notifications deleted", "count", n)
	return nil
}

// DeleteOne deletes a notification the caller received.
func (s *NotificationService) DeleteOne(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	n, err := s.notifications.GetNotificationByID(ctx, notificationID)
	if err != nil {
		return notFoundOr(err, "Notification")
	}
	if n.To != userID {
		return models.NewForbiddenError("You are not allowed to delete this notification")
	}
	if err := s.notifications.DeleteNotification(ctx, notificationID); err != nil {
		return notFoundOr(err, "Notification")
	}
	return nil
}

func (s *NotificationService) views(ctx context.Context, ns []models.Notification) ([]models.NotificationView, error) {
	ids := make([]primitive.ObjectID, 0, len(ns))
	for _, n := range ns {
		ids = append(ids, n.From)
	}
	senders, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.NotificationView, 0, len(ns))
	for _, n := range ns {
		views = append(views, models.NotificationView{
			ID:        n.ID,
			Type:      n.Type,
			From:      senders.get(n.From),
			To:        n.To,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return views, nil
}

// summaryIndex maps user ids to their summaries.
type summaryIndex map[primitive.ObjectID]models.UserSummary

// get returns the summary for id, or one carrying only the id if the user is gone.
func (idx summaryIndex) get(id primitive.ObjectID) models.UserSummary {
	if s, ok := idx[id]; ok {
		return s
	}
	return models.UserSummary{ID: id}
}

func summaries(ctx context.Context, users repositories.UserRepository, ids []primitive.ObjectID) (summaryIndex, error) {
	found, err := users.GetUsersByIDs(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, err
	}
	idx := make(summaryIndex, len(found))
	for i := range found {
		idx[found[i].ID] = found[i].ToSummary()
	}
	return idx, nil
}

func uniqueIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := make(map[primitive.ObjectID]struct{}, len(ids))
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package testutil

import (
	"context"
	"sort"
	"sync"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStore is an in-memory repositories.NotificationRepository.
type NotificationStore struct {
	faults
	mu            sync.Mutex
	clock         Clock
	notifications map[primitive.ObjectID]*models.Notification
}

var _ repositories.NotificationRepository = (*NotificationStore)(nil)

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{notifications: map[primitive.ObjectID]*models.Notification{}}
}

func (s *NotificationStore) CreateNotification(_ context.Context, n *models.Notification) error {
	if err := s.hit("CreateNotification"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.CreatedAt = s.clock.Now()
	c := *n
	s.notifications[n.ID] = &c
	return nil
}

func (s *NotificationStore) GetNotificationByID(_ context.Context, id primitive.ObjectID) (*models.Notification, error) {
	if err := s.hit("GetNotificationByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *n
	return &c, nil
}

func (s *NotificationStore) GetByRecipientID(_ context.Context, recipientID primitive.ObjectID) ([]models.Notification, error) {
	if err := s.hit("GetByRecipientID"); err != nil {
		return nil, err
	}
	return s.For(recipientID), nil
}

func (s *NotificationStore) GetUnreadCount(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	if err := s.hit("GetUnreadCount"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, v := range s.notifications {
		if v.To == recipientID && !v.Read {
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) MarkAsRead(_ context.Context, recipientID primitive.ObjectID, ids []primitive.ObjectID) error {
	if err := s.hit("MarkAsRead"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if v, ok := s.notifications[id]; ok && v.To == recipientID {
			v.Read = true
		}
	}
	return nil
}

func (s *NotificationStore) DeleteByRecipientID(_ context.Context, recipientID primitive.ObjectID) (int64, error) {
	if err := s.hit("DeleteByRecipientID"); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, v := range s.notifications {
		if v.To == recipientID {
			delete(s.notifications, id)
			n++
		}
	}
	return n, nil
}

func (s *NotificationStore) DeleteNotification(_ context.Context, id primitive.ObjectID) error {
	if err := s.hit("DeleteNotification"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.notifications[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.notifications, id)
	return nil
}

// For returns the recipient's notifications, newest first.
func (s *NotificationStore) For(recipientID primitive.ObjectID) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for _, v := range s.notifications {
		if v.To == recipientID {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// Count returns the number of stored notifications.
func (s *NotificationStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.notifications)
}

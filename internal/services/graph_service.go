package services

import (
	"context"
	"log/slog"

	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	suggestionSample = 10
	suggestionLimit  = 4
)

// GraphService maintains the follow graph. Both sides of an edge are written
// with conditional updates; when the second write fails the first is reverted.
type GraphService struct {
	users    repositories.UserRepository
	notifier *NotificationService
	logger   *slog.Logger
}

func NewGraphService(users repositories.UserRepository, notifier *NotificationService, logger *slog.Logger) *GraphService {
	return &GraphService{users: users, notifier: notifier, logger: logger}
}

// FollowUnfollow toggles whether actorID follows targetID.
func (s *GraphService) FollowUnfollow(ctx context.Context, actorID, targetID primitive.ObjectID) (*models.FollowResult, error) {
	if actorID == targetID {
		return nil, models.ErrSelfFollow
	}

	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return nil, notFoundOr(err, "User")
	}

	if actor.IsFollowing(targetID) {
		if err := s.unfollow(ctx, actorID, targetID); err != nil {
			return nil, err
		}
		metrics.ToggleTotal.WithLabelValues("unfollow").Inc()
		return &models.FollowResult{Message: "You unfollowed this account", Following: false}, nil
	}

	if err := s.follow(ctx, actorID, targetID); err != nil {
		return nil, err
	}
	metrics.ToggleTotal.WithLabelValues("follow").Inc()
	return &models.FollowResult{Message: "You are now following this account", Following: true}, nil
}

func (s *GraphService) follow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	added, err := s.users.AddFollowing(ctx, actorID, targetID)
	if err != nil {
		return notFoundOr(err, "User")
	}
	if _, err := s.users.AddFollower(ctx, targetID, actorID); err != nil {
		if added {
			compensate(ctx, s.logger, "follow", func() error {
				_, err := s.users.RemoveFollowing(ctx, actorID, targetID)
				return err
			})
		}
		return notFoundOr(err, "User")
	}

	// a concurrent request already created this edge and its notification
	if !added {
		return nil
	}
	if err := s.notifier.Emit(ctx, models.NotificationFollow, actorID, targetID); err != nil {
		compensate(ctx, s.logger, "follow", func() error {
			if _, err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
				return err
			}
			_, err := s.users.RemoveFollowing(ctx, actorID, targetID)
			return err
		})
		return models.NewInternalError(err)
	}
	return nil
}

func (s *GraphService) unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	removed, err := s.users.RemoveFollowing(ctx, actorID, targetID)
	if err != nil {
		return notFoundOr(err, "User")
	}
	if _, err := s.users.RemoveFollower(ctx, targetID, actorID); err != nil {
		if removed {
			compensate(ctx, s.logger, "unfollow", func() error {
				_, err := s.users.AddFollowing(ctx, actorID, targetID)
				return err
			})
		}
		return notFoundOr(err, "User")
	}
	return nil
}

// SuggestedUsers samples users the actor does not follow yet.
func (s *GraphService) SuggestedUsers(ctx context.Context, actorID primitive.ObjectID) ([]models.User, error) {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	sample, err := s.users.SampleUsers(ctx, actorID, suggestionSample)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	suggested := make([]models.User, 0, suggestionLimit)
	for _, u := range sample {
		if actor.IsFollowing(u.ID) {
			continue
		}
		suggested = append(suggested, u)
		if len(suggested) == suggestionLimit {
			break
		}
	}
	return suggested, nil
}

// Followers lists who follows username, in follow order.
func (s *GraphService) Followers(ctx context.Context, username string) ([]models.UserSummary, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return s.orderedSummaries(ctx, user.Followers)
}

// Following lists whom username follows, in follow order.
func (s *GraphService) Following(ctx context.Context, username string) ([]models.UserSummary, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	return s.orderedSummaries(ctx, user.Following)
}

func (s *GraphService) orderedSummaries(ctx context.Context, ids []primitive.ObjectID) ([]models.UserSummary, error) {
	idx, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.UserSummary, 0, len(ids))
	for _, id := range ids {
		if sum, ok := idx[id]; ok {
			out = append(out, sum)
		}
	}
	return out, nil
}

package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/media"
	"github.com/anonto42/nano-social/backend/internal/metrics"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostService manages posts, their likes and comments, and the feeds.
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	notifier *NotificationService
	media    media.Store
	logger   *slog.Logger
}

func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, notifier *NotificationService, store media.Store, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, users: users, notifier: notifier, media: store, logger: logger}
}

// Create publishes a post. req.Img, when set, is a data URI uploaded to the media store.
func (s *PostService) Create(ctx context.Context, actorID primitive.ObjectID, req models.CreatePostRequest) (*models.PostView, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && req.Img == "" {
		return nil, models.NewValidationError("Post must have a text or image")
	}
	if _, err := s.users.GetUserByID(ctx, actorID); err != nil {
		return nil, notFoundOr(err, "User")
	}

	post := &models.Post{User: actorID, Text: text}
	if req.Img != "" {
		url, err := s.media.Upload(ctx, req.Img)
		if err != nil {
			return nil, mediaError(err)
		}
		post.Img = url
	}

	if err := s.posts.CreatePost(ctx, post); err != nil {
		if post.Img != "" {
			if delErr := s.media.Delete(ctx, post.Img); delErr != nil {
				s.logger.ErrorContext(ctx, "orphaned post image", "asset", post.Img, "error", delErr)
			}
		}
		return nil, models.NewInternalError(err)
	}
	return s.view(ctx, post)
}

// Delete removes the actor's own post and its image.
func (s *PostService) Delete(ctx context.Context, actorID, postID primitive.ObjectID) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return notFoundOr(err, "Post")
	}
	if post.User != actorID {
		return models.NewForbiddenError("You are not authorized to delete this post")
	}
	if post.Img != "" {
		if err := s.media.Delete(ctx, post.Img); err != nil {
			return models.NewInternalError(err)
		}
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return notFoundOr(err, "Post")
	}
	return nil
}

// Comment appends a comment by the actor and returns the updated post.
func (s *PostService) Comment(ctx context.Context, actorID, postID primitive.ObjectID, text string) (*models.PostView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Text:      text,
		User:      actorID,
		CreatedAt: time.Now(),
	}
	post, err := s.posts.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, notFoundOr(err, "Post")
	}
	return s.view(ctx, post)
}

// LikeUnlike toggles the actor's like on a post.
func (s *PostService) LikeUnlike(ctx context.Context, actorID, postID primitive.ObjectID) (*models.LikeResult, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, notFoundOr(err, "Post")
	}

	result := &models.LikeResult{}
	if post.LikedBy(actorID) {
		if err := s.unlike(ctx, actorID, postID); err != nil {
			return nil, err
		}
		metrics.ToggleTotal.WithLabelValues("unlike").Inc()
		result.Message, result.Liked = "You unliked this post", false
	} else {
		if err := s.like(ctx, actorID, post); err != nil {
			return nil, err
		}
		metrics.ToggleTotal.WithLabelValues("like").Inc()
		result.Message, result.Liked = "You liked this post", true
	}

	if updated, err := s.posts.GetPostByID(ctx, postID); err == nil {
		result.Likes = updated.Likes
	} else {
		result.Likes = applyLike(post.Likes, actorID, result.Liked)
	}
	return result, nil
}

func (s *PostService) like(ctx context.Context, actorID primitive.ObjectID, post *models.Post) error {
	added, err := s.posts.AddLike(ctx, post.ID, actorID)
	if err != nil {
		return notFoundOr(err, "Post")
	}
	if _, err := s.users.AddLikedPost(ctx, actorID, post.ID); err != nil {
		if added {
			compensate(ctx, s.logger, "like", func() error {
				_, err := s.posts.RemoveLike(ctx, post.ID, actorID)
				return err
			})
		}
		return notFoundOr(err, "User")
	}

	if !added || post.User == actorID {
		return nil
	}
	if err := s.notifier.Emit(ctx, models.NotificationLike, actorID, post.User); err != nil {
		compensate(ctx, s.logger, "like", func() error {
			if _, err := s.users.RemoveLikedPost(ctx, actorID, post.ID); err != nil {
				return err
			}
			_, err := s.posts.RemoveLike(ctx, post.ID, actorID)
			return err
		})
		return models.NewInternalError(err)
	}
	return nil
}

func (s *PostService) unlike(ctx context.Context, actorID, postID primitive.ObjectID) error {
	removed, err := s.posts.RemoveLike(ctx, postID, actorID)
	if err != nil {
		return notFoundOr(err, "Post")
	}
	if _, err := s.users.RemoveLikedPost(ctx, actorID, postID); err != nil {
		if removed {
			compensate(ctx, s.logger, "unlike", func() error {
				_, err := s.posts.AddLike(ctx, postID, actorID)
				return err
			})
		}
		return notFoundOr(err, "User")
	}
	return nil
}

func applyLike(likes []primitive.ObjectID, userID primitive.ObjectID, liked bool) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(likes)+1)
	for _, id := range likes {
		if id != userID {
			out = append(out, id)
		}
	}
	if liked {
		out = append(out, userID)
	}
	return out
}

// All returns every post, newest first.
func (s *PostService) All(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.posts.GetAllPosts(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.views(ctx, posts)
}

// Following returns posts by the users the actor follows, newest first.
func (s *PostService) Following(ctx context.Context, actorID primitive.ObjectID) ([]models.PostView, error) {
	actor, err := s.users.GetUserByID(ctx, actorID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	posts, err := s.posts.GetPostsByUserIDs(ctx, actor.Following)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.views(ctx, posts)
}

// Liked returns the posts userID liked, in the order they were liked.
// Posts deleted since are skipped.
func (s *PostService) Liked(ctx context.Context, userID primitive.ObjectID) ([]models.PostView, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	found, err := s.posts.GetPostsByIDs(ctx, user.LikedPosts)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	byID := make(map[primitive.ObjectID]models.Post, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	ordered := make([]models.Post, 0, len(found))
	for _, id := range user.LikedPosts {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
			delete(byID, id)
		}
	}
	return s.views(ctx, ordered)
}

// ByUser returns the posts written by username, newest first.
func (s *PostService) ByUser(ctx context.Context, username string) ([]models.PostView, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, notFoundOr(err, "User")
	}
	posts, err := s.posts.GetPostsByUserIDs(ctx, []primitive.ObjectID{user.ID})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.views(ctx, posts)
}

func (s *PostService) view(ctx context.Context, post *models.Post) (*models.PostView, error) {
	views, err := s.views(ctx, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views joins authors and commenters onto posts.
func (s *PostService) views(ctx context.Context, posts []models.Post) ([]models.PostView, error) {
	var ids []primitive.ObjectID
	for _, p := range posts {
		ids = append(ids, p.User)
		for _, c := range p.Comments {
			ids = append(ids, c.User)
		}
	}
	idx, err := summaries(ctx, s.users, ids)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	views := make([]models.PostView, 0, len(posts))
	for _, p := range posts {
		comments := make([]models.CommentView, 0, len(p.Comments))
		for _, c := range p.Comments {
			comments = append(comments, models.CommentView{
				ID:        c.ID,
				Text:      c.Text,
				User:      idx.get(c.User),
				CreatedAt: c.CreatedAt,
			})
		}
		likes := p.Likes
		if likes == nil {
			likes = []primitive.ObjectID{}
		}
		views = append(views, models.PostView{
			ID:        p.ID,
			User:      idx.get(p.User),
			Text:      p.Text,
			Img:       p.Img,
			Likes:     likes,
			Comments:  comments,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return views, nil
}

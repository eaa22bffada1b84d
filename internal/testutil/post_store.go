package testutil

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PostStore is an in-memory repositories.PostRepository.
type PostStore struct {
	faults
	mu    sync.Mutex
	clock Clock
	posts map[primitive.ObjectID]*models.Post
}

var _ repositories.PostRepository = (*PostStore)(nil)

func NewPostStore() *PostStore {
	return &PostStore{posts: map[primitive.ObjectID]*models.Post{}}
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = slices.Clone(p.Likes)
	c.Comments = slices.Clone(p.Comments)
	return &c
}

func (s *PostStore) CreatePost(_ context.Context, post *models.Post) error {
	if err := s.hit("CreatePost"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = s.clock.Now()
	post.UpdatedAt = post.CreatedAt
	if post.Likes == nil {
		post.Likes = []primitive.ObjectID{}
	}
	if post.Comments == nil {
		post.Comments = []models.Comment{}
	}
	s.posts[post.ID] = clonePost(post)
	return nil
}

func (s *PostStore) GetPostByID(_ context.Context, id primitive.ObjectID) (*models.Post, error) {
	if err := s.hit("GetPostByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return clonePost(p), nil
}

func (s *PostStore) collect(match func(*models.Post) bool) []models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	posts := []models.Post{}
	for _, p := range s.posts {
		if match(p) {
			posts = append(posts, *clonePost(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts
}

func (s *PostStore) GetAllPosts(_ context.Context) ([]models.Post, error) {
	if err := s.hit("GetAllPosts"); err != nil {
		return nil, err
	}
	return s.collect(func(*models.Post) bool { return true }), nil
}

func (s *PostStore) GetPostsByUserIDs(_ context.Context, userIDs []primitive.ObjectID) ([]models.Post, error) {
	if err := s.hit("GetPostsByUserIDs"); err != nil {
		return nil, err
	}
	return s.collect(func(p *models.Post) bool { return slices.Contains(userIDs, p.User) }), nil
}

func (s *PostStore) GetPostsByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Post, error) {
	if err := s.hit("GetPostsByIDs"); err != nil {
		return nil, err
	}
	return s.collect(func(p *models.Post) bool { return slices.Contains(ids, p.ID) }), nil
}

func (s *PostStore) DeletePost(_ context.Context, id primitive.ObjectID) error {
	if err := s.hit("DeletePost"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *PostStore) AddComment(_ context.Context, postID primitive.ObjectID, comment models.Comment) (*models.Post, error) {
	if err := s.hit("AddComment"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	p.Comments = append(p.Comments, comment)
	p.UpdatedAt = s.clock.Now()
	return clonePost(p), nil
}

func (s *PostStore) AddLike(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	if err := s.hit("AddLike"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if slices.Contains(p.Likes, userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, userID)
	return true, nil
}

func (s *PostStore) RemoveLike(_ context.Context, postID, userID primitive.ObjectID) (bool, error) {
	if err := s.hit("RemoveLike"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[postID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if !slices.Contains(p.Likes, userID) {
		return false, nil
	}
	p.Likes = slices.DeleteFunc(p.Likes, func(v primitive.ObjectID) bool { return v == userID })
	return true, nil
}

// Get returns a copy of the stored post, or nil.
func (s *PostStore) Get(id primitive.ObjectID) *models.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.posts[id]; ok {
		return clonePost(p)
	}
	return nil
}

package testutil

import (
	"context"
	"math/rand"
	"slices"
	"sync"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserStore is an in-memory repositories.UserRepository.
type UserStore struct {
	faults
	mu    sync.Mutex
	clock Clock
	users map[primitive.ObjectID]*models.User
}

var _ repositories.UserRepository = (*UserStore)(nil)

func NewUserStore() *UserStore {
	return &UserStore{users: map[primitive.ObjectID]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = slices.Clone(u.Followers)
	c.Following = slices.Clone(u.Following)
	c.LikedPosts = slices.Clone(u.LikedPosts)
	return &c
}

func (s *UserStore) uniqueViolation(u *models.User) bool {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return true
		}
		if u.FirebaseUID != "" && other.FirebaseUID == u.FirebaseUID {
			return true
		}
	}
	return false
}

func (s *UserStore) CreateUser(_ context.Context, user *models.User) error {
	if err := s.hit("CreateUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = s.clock.Now()
	user.UpdatedAt = user.CreatedAt
	if user.Followers == nil {
		user.Followers = []primitive.ObjectID{}
	}
	if user.Following == nil {
		user.Following = []primitive.ObjectID{}
	}
	if user.LikedPosts == nil {
		user.LikedPosts = []primitive.ObjectID{}
	}
	if s.uniqueViolation(user) {
		return repositories.ErrDuplicateKey
	}
	s.users[user.ID] = cloneUser(user)
	return nil
}

func (s *UserStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if err := s.hit("GetUserByID"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneUser(u), nil
}

func (s *UserStore) findBy(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (s *UserStore) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	if err := s.hit("GetUserByUsername"); err != nil {
		return nil, err
	}
	return s.findBy(func(u *models.User) bool { return u.Username == username })
}

func (s *UserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if err := s.hit("GetUserByEmail"); err != nil {
		return nil, err
	}
	return s.findBy(func(u *models.User) bool { return u.Email == email })
}

func (s *UserStore) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	if err := s.hit("GetUserByFirebaseUID"); err != nil {
		return nil, err
	}
	return s.findBy(func(u *models.User) bool { return uid != "" && u.FirebaseUID == uid })
}

func (s *UserStore) LinkFirebaseUID(_ context.Context, userID primitive.ObjectID, uid string) (bool, error) {
	if err := s.hit("LinkFirebaseUID"); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return false, repositories.ErrNotFound
	}
	if u.FirebaseUID != "" {
		return false, nil
	}
	for _, other := range s.users {
		if other.FirebaseUID == uid {
			return false, repositories.ErrDuplicateKey
		}
	}
	u.FirebaseUID = uid
	return true, nil
}

func (s *UserStore) GetUsersByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if err := s.hit("GetUsersByIDs"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	seen := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok && !seen[id] {
			seen[id] = true
			users = append(users, *cloneUser(u))
		}
	}
	return users, nil
}

func (s *UserStore) UpdateUser(_ context.Context, user *models.User) error {
	if err := s.hit("UpdateUser"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if s.uniqueViolation(user) {
		return repositories.ErrDuplicateKey
	}
	current.Username = user.Username
	current.FullName = user.FullName
	current.Email = user.Email
	current.Password = user.Password
	current.Bio = user.Bio
	current.Link = user.Link
	current.ProfilePic = user.ProfilePic
	current.CoverPic = user.CoverPic
	current.UpdatedAt = s.clock.Now()
	return nil
}

func (s *UserStore) SampleUsers(_ context.Context, excludeID primitive.ObjectID, size int) ([]models.User, error) {
	if err := s.hit("SampleUsers"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for id, u := range s.users {
		if id != excludeID {
			users = append(users, *cloneUser(u))
		}
	}
	rand.Shuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] })
	if len(users) > size {
		users = users[:size]
	}
	return users, nil
}

func (s *UserStore) list(u *models.User, field string) *[]primitive.ObjectID {
	switch field {
	case "following":
		return &u.Following
	case "followers":
		return &u.Followers
	}
	return &u.LikedPosts
}

func (s *UserStore) add(method string, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	if err := s.hit(method); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	l := s.list(u, field)
	if slices.Contains(*l, value) {
		return false, nil
	}
	*l = append(*l, value)
	return true, nil
}

func (s *UserStore) remove(method string, id primitive.ObjectID, field string, value primitive.ObjectID) (bool, error) {
	if err := s.hit(method); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return false, repositories.ErrNotFound
	}
	l := s.list(u, field)
	if !slices.Contains(*l, value) {
		return false, nil
	}
	*l = slices.DeleteFunc(*l, func(v primitive.ObjectID) bool { return v == value })
	return true, nil
}

func (s *UserStore) AddFollowing(_ context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return s.add("AddFollowing", userID, "following", targetID)
}

func (s *UserStore) RemoveFollowing(_ context.Context, userID, targetID primitive.ObjectID) (bool, error) {
	return s.remove("RemoveFollowing", userID, "following", targetID)
}

func (s *UserStore) AddFollower(_ context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return s.add("AddFollower", userID, "followers", followerID)
}

func (s *UserStore) RemoveFollower(_ context.Context, userID, followerID primitive.ObjectID) (bool, error) {
	return s.remove("RemoveFollower", userID, "followers", followerID)
}

func (s *UserStore) AddLikedPost(_ context.Context, userID, postID primitive.ObjectID) (bool, error) {
	return s.add("AddLikedPost", userID, "likedPosts", postID)
}

func (s *UserStore) RemoveLikedPost(_ context.Context, userID, postID primitive.ObjectID) (bool, error) {
	return s.remove("RemoveLikedPost", userID, "likedPosts", postID)
}

// Count returns the number of stored users.
func (s *UserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// Get returns a copy of the stored user, or nil.
func (s *UserStore) Get(id primitive.ObjectID) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	users         *testutil.UserStore
	posts         *testutil.PostStore
	notifications *testutil.NotificationStore
	media         *testutil.MediaStore

	auth     *AuthService
	profiles *ProfileService
	graph    *GraphService
	feed     *PostService
	notifier *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := &testEnv{
		users:         testutil.NewUserStore(),
		posts:         testutil.NewPostStore(),
		notifications: testutil.NewNotificationStore(),
		media:         testutil.NewMediaStore(),
	}
	e.notifier = NewNotificationService(e.notifications, e.users, logger)
	e.auth = NewAuthService(e.users, nil, logger)
	e.profiles = NewProfileService(e.users, e.media, logger)
	e.graph = NewGraphService(e.users, e.notifier, logger)
	e.feed = NewPostService(e.posts, e.users, e.notifier, e.media, logger)
	return e
}

func (e *testEnv) signup(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := e.auth.Signup(context.Background(), models.SignupRequest{
		Username: username,
		FullName: username + " Example",
		Email:    username + "@example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func requireAppError(t *testing.T, err error, kind models.ErrorKind, message string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	require.Equal(t, kind, appErr.Kind)
	if message != "" {
		require.Equal(t, message, appErr.Message)
	}
}

var errBoom = errors.New("boom")

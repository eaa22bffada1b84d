package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ auth.RevocationStore = (*GormRevocationRepository)(nil)

func newRevocationRepo(t *testing.T) (*GormRevocationRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.RevokedToken{}))
	return NewGormRevocationRepository(db), db
}

func TestRevocationRepository(t *testing.T) {
	repo, _ := newRevocationRepo(t)
	ctx := context.Background()
	now := time.Now()
	repo.now = func() time.Time { return now }

	revoked, err := repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke(ctx, "jti-1", "user-1", now.Add(time.Hour)))
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// revoking twice is not an error
	require.NoError(t, repo.Revoke(ctx, "jti-1", "user-1", now.Add(time.Hour)))

	now = now.Add(2 * time.Hour)
	revoked, err = repo.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevocationRepositoryPurgesExpired(t *testing.T) {
	repo, db := newRevocationRepo(t)
	ctx := context.Background()
	now := time.Now()
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Revoke(ctx, "old", "user-1", now.Add(time.Minute)))
	now = now.Add(time.Hour)
	require.NoError(t, repo.Revoke(ctx, "new", "user-1", now.Add(time.Minute)))

	var count int64
	require.NoError(t, db.Model(&models.RevokedToken{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

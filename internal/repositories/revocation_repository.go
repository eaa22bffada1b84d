package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRevocationRepository stores the ids of logged-out session tokens until
// they expire, with GORM (PostgreSQL in production). It is the auth.RevocationStore.
type GormRevocationRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormRevocationRepository creates a new GormRevocationRepository
func NewGormRevocationRepository(db *gorm.DB) *GormRevocationRepository {
	return &GormRevocationRepository{db: db, now: time.Now}
}

// Revoke records jti and purges entries whose tokens have expired on their own.
func (r *GormRevocationRepository) Revoke(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("expires_at < ?", r.now()).Delete(&models.RevokedToken{}).Error; err != nil {
		return err
	}
	entry := &models.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(entry).Error
}

// IsRevoked reports whether jti has been revoked and has not yet expired.
func (r *GormRevocationRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var entry models.RevokedToken
	err := r.db.WithContext(ctx).Where("jti = ? AND expires_at >= ?", jti, r.now()).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

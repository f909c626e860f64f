package sqlstore

import (
	"context"
	"errors"
	"time"

	"github.com/suPer8Hu/gopherchat-web/internal/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TokenRecord is one browser session's stored token.
type TokenRecord struct {
	Key       string     `gorm:"primaryKey;type:varchar(80)"`
	Token     string     `gorm:"type:text;not null"`
	ExpiresAt *time.Time `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TokenRecord) TableName() string { return "browser_tokens" }

type Store struct {
	db  *gorm.DB
	now func() time.Time
}

var _ auth.Store = (*Store)(nil)

func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Migrate() error {
	return s.db.AutoMigrate(&TokenRecord{})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var rec TokenRecord
	if err := s.db.WithContext(ctx).Where("`key` = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", auth.ErrNoToken
		}
		return "", err
	}
	if rec.ExpiresAt != nil && !s.now().Before(*rec.ExpiresAt) {
		_ = s.Remove(ctx, key)
		return "", auth.ErrNoToken
	}
	return rec.Token, nil
}

func (s *Store) Put(ctx context.Context, key, token string, ttl time.Duration) error {
	rec := TokenRecord{Key: key, Token: token}
	if ttl > 0 {
		exp := s.now().Add(ttl)
		rec.ExpiresAt = &exp
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "expires_at", "updated_at"}),
	}).Create(&rec).Error
}

func (s *Store) Remove(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("`key` = ?", key).Delete(&TokenRecord{}).Error
}

// PurgeExpired deletes rows whose TTL has passed and returns how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", s.now()).
		Delete(&TokenRecord{})
	return res.RowsAffected, res.Error
}

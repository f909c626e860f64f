package activity

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Migrate() error {
	return r.db.AutoMigrate(&Event{})
}

// Insert stores e. Redelivered events (same ID) are accepted and ignored so
// the worker can ack them.
func (r *Repo) Insert(ctx context.Context, e *Event) (bool, error) {
	err := r.db.WithContext(ctx).Create(e).Error
	if err == nil {
		return true, nil
	}

	var existing Event
	getErr := r.db.WithContext(ctx).First(&existing, "id = ?", e.ID).Error
	if getErr == nil {
		return false, nil
	}
	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return false, err
	}
	return false, getErr
}

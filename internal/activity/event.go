package activity

import (
	"context"
	"time"

	"github.com/suPer8Hu/gopherchat-web/internal/common"
)

type Kind string

const (
	LoginSucceeded  Kind = "login_succeeded"
	LoginFailed     Kind = "login_failed"
	SignupSucceeded Kind = "signup_succeeded"
	SignupFailed    Kind = "signup_failed"
	Logout          Kind = "logout"
)

// Event is an auth action taken through the web client. It is published to
// the queue and stored by the worker.
type Event struct {
	ID        string    `gorm:"primaryKey;size:26" json:"id"` // ULID length
	Kind      Kind      `gorm:"type:varchar(32);index;not null" json:"kind"`
	Username  string    `gorm:"type:varchar(64);index" json:"username,omitempty"`
	RequestID string    `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	RemoteIP  string    `gorm:"type:varchar(64)" json:"remote_ip,omitempty"`
	Detail    string    `gorm:"type:text" json:"detail,omitempty"`
	At        time.Time `gorm:"index;not null" json:"at"`
}

func (Event) TableName() string { return "activity_events" }

// NewEvent fills ID and At.
func NewEvent(kind Kind, username string) (Event, error) {
	id, err := common.NewULID()
	if err != nil {
		return Event{}, err
	}
	return Event{ID: id, Kind: kind, Username: username, At: time.Now().UTC()}, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event. Used when EVENTS_ENABLED is off.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// one database per test so rows never leak between tests
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(openTestDB(t))
	if err := s.Migrate(); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return s
}

func TestPutGetRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Get(ctx, "k1"); !errors.Is(err, auth.ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	if err := s.Put(ctx, "k1", "tok-a", 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	// second put on the same key replaces the token
	if err := s.Put(ctx, "k1", "tok-b", 0); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-b" {
		t.Fatalf("unexpected token: %q", got)
	}

	if err := s.Remove(ctx, "k1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(ctx, "k1"); !errors.Is(err, auth.ErrNoToken) {
		t.Fatalf("expected ErrNoToken after remove, got %v", err)
	}
}

func TestExpiry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.Put(ctx, "short", "tok", time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, "forever", "tok", 0); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(2 * time.Minute)

	n, err := s.PurgeExpired(ctx)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 purged row, got %d", n)
	}
	if _, err := s.Get(ctx, "short"); !errors.Is(err, auth.ErrNoToken) {
		t.Fatalf("expected expired token to be gone, got %v", err)
	}
	if _, err := s.Get(ctx, "forever"); err != nil {
		t.Fatalf("expected token without ttl to remain: %v", err)
	}
}

func TestWorksBehindManager(t *testing.T) {
	s := newTestStore(t)
	m := auth.NewManager(s, auth.Options{})
	ctx := context.Background()

	ac := &auth.Context{}
	if err := m.Save(ctx, httptest.NewRecorder(), ac, "tok"); err != nil {
		t.Fatalf("save: %v", err)
	}
	var count int64
	if err := s.db.Model(&TokenRecord{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row, got %d", count)
	}
}

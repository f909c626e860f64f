package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/suPer8Hu/gopherchat-web/internal/activity"
	"github.com/suPer8Hu/gopherchat-web/internal/apiclient"
	"github.com/suPer8Hu/gopherchat-web/internal/auth"
	"github.com/suPer8Hu/gopherchat-web/internal/config"
	"github.com/suPer8Hu/gopherchat-web/internal/db"
	"github.com/suPer8Hu/gopherchat-web/internal/httpapi"
	"github.com/suPer8Hu/gopherchat-web/internal/store/rabbitmq"
	"github.com/suPer8Hu/gopherchat-web/internal/store/redisstore"
	"github.com/suPer8Hu/gopherchat-web/internal/store/sqlstore"
)

const purgeInterval = 10 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}
	cfg := config.Load()

	store, closeStore := openTokenStore(ctx, cfg)
	defer closeStore()

	events, closeEvents := openPublisher(cfg)
	defer closeEvents()

	am := auth.NewManager(store, auth.Options{
		CookieName:  cfg.CookieName,
		Secure:      cfg.CookieSecure,
		TTL:         cfg.TokenTTL,
		CheckExpiry: cfg.CheckTokenExpiry,
	})
	api := apiclient.New(cfg.APIBaseURL, cfg.APITimeout)

	r := httpapi.NewRouter(cfg, api, am, events)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("web listening on %s backend=%s store=%s", cfg.Addr, cfg.APIBaseURL, cfg.TokenStore)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func openTokenStore(ctx context.Context, cfg config.Config) (auth.Store, func()) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return auth.NewMemoryStore(), func() {}

	case config.TokenStoreRedis:
		rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rds.Ping(pctx); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		return rds, func() { _ = rds.Close() }

	case config.TokenStoreSQL:
		s := sqlstore.New(db.Connect(cfg.DBDSN))
		if err := s.Migrate(); err != nil {
			log.Fatalf("automigrate: %v", err)
		}
		go purgeExpired(ctx, s)
		return s, func() {}

	default:
		log.Fatalf("unsupported TOKEN_STORE=%q", cfg.TokenStore)
		return nil, nil
	}
}

func purgeExpired(ctx context.Context, s *sqlstore.Store) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				log.Printf("purge expired tokens: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("purged %d expired tokens", n)
			}
		}
	}
}

func openPublisher(cfg config.Config) (activity.Publisher, func()) {
	if !cfg.EventsEnabled {
		return activity.Nop{}, func() {}
	}
	p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("warning: activity events disabled, rabbit unavailable: %v", err)
		return activity.Nop{}, func() {}
	}
	return p, closer(p)
}

func closer(c io.Closer) func() {
	return func() { _ = c.Close() }
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

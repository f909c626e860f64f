package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/suPer8Hu/gopherchat-web/internal/activity"
	"github.com/suPer8Hu/gopherchat-web/internal/config"
	"github.com/suPer8Hu/gopherchat-web/internal/db"
	"github.com/suPer8Hu/gopherchat-web/internal/store/rabbitmq"
)

const (
	maxRetries = 3
	retryDelay = 5 * time.Second
)

var (
	errBadMessage       = errors.New("bad message")
	errDeliveriesClosed = errors.New("delivery channel closed")
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := activity.NewRepo(gdb)
	if err := repo.Migrate(); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	if err := rabbitmq.DeclareQueues(ch, cfg.RabbitQueue); err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	//  strict concurrency control
	concurrency := cfg.WorkerConcurrency

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	// amqp channels are not safe for concurrent publishing
	var pubMu sync.Mutex
	retry := func(d amqp.Delivery) error {
		pubMu.Lock()
		defer pubMu.Unlock()
		return ch.PublishWithContext(ctx, "", rabbitmq.RetryQueue(cfg.RabbitQueue), false, false,
			rabbitmq.RetryPublishing(d, retryDelay))
	}

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				start := time.Now()
				err := handleDelivery(ctx, repo, d.Body)
				switch {
				case err == nil:
					if err := d.Ack(false); err != nil {
						log.Printf("worker=%d ack failed msg=%s err=%v", workerID, d.MessageId, err)
					}

				case errors.Is(err, errBadMessage):
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)

				case rabbitmq.RetryCount(d.Headers) < maxRetries:
					log.Printf("worker=%d msg %s failed cost=%s err=%v, retrying", workerID, d.MessageId, time.Since(start), err)
					if rerr := retry(d); rerr != nil {
						log.Printf("worker=%d retry publish failed msg=%s err=%v", workerID, d.MessageId, rerr)
						_ = d.Nack(false, false)
						continue
					}
					_ = d.Ack(false)

				default:
					log.Printf("worker=%d msg %s failed after %d retries err=%v", workerID, d.MessageId, maxRetries, err)
					_ = d.Nack(false, false)
				}
			}
		}(i)
	}

	err = dispatch(ctx, msgs, jobs)
	close(jobs)
	wg.Wait()
	if err != nil {
		log.Fatalf("worker stopped: %v", err)
	}
	log.Printf("worker shutting down")
}

// dispatch feeds deliveries to the pool until ctx is done. A closed delivery
// channel means the broker connection is gone and is returned as an error.
func dispatch(ctx context.Context, msgs <-chan amqp.Delivery, jobs chan<- amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case d, ok := <-msgs:
			if !ok {
				return errDeliveriesClosed
			}
			select {
			case jobs <- d:
			case <-ctx.Done():
				// unacked, the broker redelivers it
				return nil
			}
		}
	}
}

func handleDelivery(ctx context.Context, repo *activity.Repo, body []byte) error {
	var e activity.Event
	if err := json.Unmarshal(body, &e); err != nil {
		return errors.Join(errBadMessage, err)
	}
	if e.ID == "" || e.Kind == "" {
		return errBadMessage
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	created, err := repo.Insert(ctx, &e)
	if err != nil {
		return err
	}
	if !created {
		log.Printf("event %s already recorded", e.ID)
	}
	return nil
}

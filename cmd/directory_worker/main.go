package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registry/config"
	"github.com/oksasatya/go-user-registry/internal/infrastructure/search"
	"github.com/oksasatya/go-user-registry/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-directory-worker", cfg.Env)

	if cfg.RabbitMQURL == "" || cfg.RabbitMQEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}
	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	dir := search.NewDirectory(es, cfg.ESUsersIndex)
	if err := dir.EnsureIndex(context.Background()); err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, 16)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer consumer.Close()

	msgs, err := consumer.Deliveries()
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	done := make(chan struct{})

	go func() {
		failures := 0
		for msg := range msgs {
			c, cancel := context.WithTimeout(ctx, 15*time.Second)
			outcome, err := handleEvent(c, dir, msg.Body)
			cancel()
			switch outcome {
			case outcomeIndexed:
				failures = 0
				helpers.LogInfo(logger, "user indexed", logrus.Fields{"message_id": msg.MessageId})
				_ = msg.Ack(false)
			case outcomeSkipped:
				_ = msg.Ack(false)
			case outcomeRejected:
				helpers.LogError(logger, "bad message", err, nil)
				_ = msg.Nack(false, false)
			case outcomeRetry:
				failures++
				delay := retryDelay(failures)
				helpers.LogError(logger, "index failed", err, logrus.Fields{"retry_in": delay.String()})
				select {
				case <-time.After(delay):
				case <-ctx.Done():
				}
				_ = msg.Nack(false, true)
			}
		}
		close(done)
	}()

	logger.WithField("queue", cfg.RabbitMQEventsQueue).Info("directory worker listening")
	<-ctx.Done()
	logger.Info("shutting down")
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

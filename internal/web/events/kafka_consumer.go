package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/central-university-dev/go-wallpost/internal/domain/models"
	"github.com/segmentio/kafka-go"
)

type EventHandler interface {
	HandlePostEvent(ctx context.Context, event *models.PostEvent) error
}

// Consumer читает события конвейера модерации и передаёт их обработчику.
// Нечитаемые сообщения уходят в DLQ и не блокируют поток.
type Consumer struct {
	reader       *kafka.Reader
	dlqWriter    *kafka.Writer
	eventHandler EventHandler
	logger       *slog.Logger
	eventsTopic  string
	dlqTopic     string
}

func NewConsumer(
	brokers []string,
	groupID string,
	eventsTopic string,
	dlqTopic string,
	eventHandler EventHandler,
	logger *slog.Logger,
) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        groupID,
		Topic:          eventsTopic,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		CommitInterval: 1 * time.Second,
		Logger:         kafka.LoggerFunc(logger.Debug),
		ErrorLogger:    kafka.LoggerFunc(logger.Error),
	})

	dlqWriter := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &Consumer{
		reader:       reader,
		dlqWriter:    dlqWriter,
		eventHandler: eventHandler,
		logger:       logger,
		eventsTopic:  eventsTopic,
		dlqTopic:     dlqTopic,
	}
}

func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Запуск потребления событий из Kafka",
		"topic", c.eventsTopic,
	)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Остановка потребления событий из Kafka")
				return
			default:
				msg, err := c.reader.ReadMessage(ctx)
				if err != nil {
					c.logger.Error("Ошибка при чтении сообщения из Kafka",
						"error", err,
					)

					continue
				}

				if err := c.processMessage(ctx, &msg); err != nil {
					c.logger.Error("Ошибка при обработке события",
						"error", err,
					)
				}
			}
		}
	}()
}

func (c *Consumer) processMessage(ctx context.Context, msg *kafka.Message) error {
	var event models.PostEvent

	if err := json.Unmarshal(msg.Value, &event); err != nil {
		if sendErr := c.sendToDLQ(ctx, msg.Value, fmt.Sprintf("Ошибка десериализации: %s", err)); sendErr != nil {
			c.logger.Error("Ошибка при отправке сообщения в DLQ",
				"error", sendErr,
			)
		}

		return fmt.Errorf("ошибка при десериализации события: %w", err)
	}

	if event.Type != models.PostEventPublished && event.Type != models.PostEventDeleted {
		errMsg := fmt.Sprintf("неизвестный тип события: %s", event.Type)

		if sendErr := c.sendToDLQ(ctx, msg.Value, errMsg); sendErr != nil {
			c.logger.Error("Ошибка при отправке сообщения в DLQ",
				"error", sendErr,
			)
		}

		return fmt.Errorf("%s", errMsg)
	}

	if err := c.eventHandler.HandlePostEvent(ctx, &event); err != nil {
		return fmt.Errorf("ошибка при обработке события: %w", err)
	}

	c.logger.Info("Событие обработано",
		"post_id", event.PostID,
		"type", string(event.Type),
	)

	return nil
}

func (c *Consumer) sendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	c.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", c.dlqTopic,
	)

	err := c.dlqWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte("error"),
		Value: message,
		Headers: []kafka.Header{
			{Key: "error", Value: []byte(errMsg)},
			{Key: "timestamp", Value: []byte(time.Now().Format(time.RFC3339))},
		},
		Time: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке сообщения в DLQ: %w", err)
	}

	return nil
}

func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return err
	}

	return c.dlqWriter.Close()
}

// CacheInvalidator сбрасывает кэш ленты на каждое событие поста.
type CacheInvalidator struct {
	wall   WallCacheInvalidator
	logger *slog.Logger
}

type WallCacheInvalidator interface {
	InvalidateCache(ctx context.Context) error
}

func NewCacheInvalidator(wall WallCacheInvalidator, logger *slog.Logger) *CacheInvalidator {
	return &CacheInvalidator{wall: wall, logger: logger}
}

func (i *CacheInvalidator) HandlePostEvent(ctx context.Context, event *models.PostEvent) error {
	if err := i.wall.InvalidateCache(ctx); err != nil {
		return err
	}

	i.logger.Info("Кэш ленты сброшен по событию",
		"post_id", event.PostID,
		"type", string(event.Type),
	)

	return nil
}

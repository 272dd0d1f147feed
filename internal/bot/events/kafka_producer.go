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

// KafkaProducer публикует события жизненного цикла постов для веб-витрины.
type KafkaProducer struct {
	producer    *kafka.Writer
	dlqProducer *kafka.Writer
	logger      *slog.Logger
	eventsTopic string
	dlqTopic    string
}

func NewKafkaProducer(brokers []string, eventsTopic, dlqTopic string, logger *slog.Logger) *KafkaProducer {
	producer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        eventsTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	dlqProducer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        dlqTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(logger.Debug),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return &KafkaProducer{
		producer:    producer,
		dlqProducer: dlqProducer,
		logger:      logger,
		eventsTopic: eventsTopic,
		dlqTopic:    dlqTopic,
	}
}

func (p *KafkaProducer) PublishPostEvent(ctx context.Context, event *models.PostEvent) error {
	p.logger.Info("Отправка события поста в Kafka",
		"post_id", event.PostID,
		"type", string(event.Type),
		"topic", p.eventsTopic,
	)

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("ошибка при сериализации события: %w", err)
	}

	err = p.producer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", event.PostID)),
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("ошибка при отправке события в Kafka: %w", err)
	}

	return nil
}

func (p *KafkaProducer) SendToDLQ(ctx context.Context, message []byte, errMsg string) error {
	p.logger.Info("Отправка сообщения в DLQ",
		"error", errMsg,
		"topic", p.dlqTopic,
	)

	err := p.dlqProducer.WriteMessages(ctx, kafka.Message{
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

func (p *KafkaProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return err
	}

	return p.dlqProducer.Close()
}

// NoopProducer используется, когда транспорт событий выключен.
type NoopProducer struct{}

func (NoopProducer) PublishPostEvent(_ context.Context, _ *models.PostEvent) error {
	return nil
}

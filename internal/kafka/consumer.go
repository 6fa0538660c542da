// Package kafka ingests send requests published by other services.
package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"notification-center/internal/dispatch"
	"notification-center/internal/models"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

type Consumer struct {
	reader *kafka.Reader
	svc    *dispatch.Service
	logger *logrus.Logger
}

func NewConsumer(cfg Config, svc *dispatch.Service, logger *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.Topic,
		GroupID: cfg.GroupID,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

// Start reads send events until ctx is cancelled. Malformed or invalid
// messages are logged and skipped; the offset is committed either way.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info("Kafka consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("Kafka consumer stopped")
				return
			}
			c.logger.Errorf("Read message failed: %v", err)
			continue
		}

		var req models.SendRequest
		if err := json.Unmarshal(msg.Value, &req); err != nil {
			c.logger.Errorf("Unmarshal send event failed: %v", err)
			continue
		}
		if req.Title == "" || req.Message == "" || len(req.Recipients) == 0 {
			c.logger.Error("Invalid send event: missing title, message, or recipients")
			continue
		}

		if _, err := c.svc.Ingest(ctx, req, "kafka"); err != nil {
			c.logger.Errorf("Ingest from kafka failed: %v", err)
			continue
		}
		c.logger.Infof("Ingested send event for %d recipients", len(req.Recipients))
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// PaymentSuccessEvent is the payload the external payment gateway emits
// when a booking's payment clears. Consuming it triggers seat
// confirmation.
type PaymentSuccessEvent struct {
	BookingID     string `json:"booking_id"`
	TransactionID string `json:"transaction_id"`
	AmountCents   int64  `json:"amount_cents"`
}

type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a new Kafka consumer for the given topic and group
func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Start consumes payment-success events until the context is cancelled,
// invoking the handler for each decoded event. Malformed messages are
// logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(event PaymentSuccessEvent)) {
	fmt.Println("Kafka payment consumer started...")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("Error reading message: %v\n", err)
			continue
		}

		var event PaymentSuccessEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("Failed to unmarshal payment event: %v\n", err)
			continue
		}

		log.Printf("Received payment event: booking=%s", event.BookingID)
		handler(event)
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

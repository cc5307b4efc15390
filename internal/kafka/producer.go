package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"ms-booking/internal/config"
	"ms-booking/internal/models"

	"github.com/segmentio/kafka-go"
)

// Producer streams booking and trip lifecycle events, one writer per
// topic.
type Producer struct {
	bookingCreated   *kafka.Writer
	bookingConfirmed *kafka.Writer
	bookingCancelled *kafka.Writer
	bookingExpired   *kafka.Writer
	tripCreated      *kafka.Writer
}

func NewProducer(brokers []string, topics config.TopicConfig) *Producer {
	writer := func(topic string) *kafka.Writer {
		return kafka.NewWriter(kafka.WriterConfig{
			Brokers: brokers,
			Topic:   topic,
		})
	}
	return &Producer{
		bookingCreated:   writer(topics.BookingCreated),
		bookingConfirmed: writer(topics.BookingConfirmed),
		bookingCancelled: writer(topics.BookingCancelled),
		bookingExpired:   writer(topics.BookingExpired),
		tripCreated:      writer(topics.TripCreated),
	}
}

func publish(w *kafka.Writer, key string, payload interface{}) error {
	msgBytes, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	fmt.Printf("Publishing to Kafka [%s]: %s\n", w.Topic, string(msgBytes))

	return w.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(key),
			Value: msgBytes,
		},
	)
}

// PublishBookingCreated streams the booking creation event to Kafka
func (p *Producer) PublishBookingCreated(booking models.Booking) error {
	return publish(p.bookingCreated, booking.BookingID, booking)
}

// PublishBookingConfirmed streams the payment confirmation event to Kafka
func (p *Producer) PublishBookingConfirmed(booking models.Booking) error {
	return publish(p.bookingConfirmed, booking.BookingID, booking)
}

// PublishBookingCancelled streams the cancellation event to Kafka
func (p *Producer) PublishBookingCancelled(booking models.Booking) error {
	return publish(p.bookingCancelled, booking.BookingID, booking)
}

// PublishBookingExpired streams the sweeper's expiry event to Kafka
func (p *Producer) PublishBookingExpired(booking models.Booking) error {
	return publish(p.bookingExpired, booking.BookingID, booking)
}

// PublishTripCreated streams the trip creation event to Kafka
func (p *Producer) PublishTripCreated(trip models.Trip) error {
	return publish(p.tripCreated, trip.TripID, trip)
}

// Close shuts down every topic writer.
func (p *Producer) Close() error {
	var firstErr error
	for _, w := range []*kafka.Writer{
		p.bookingCreated, p.bookingConfirmed, p.bookingCancelled, p.bookingExpired, p.tripCreated,
	} {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

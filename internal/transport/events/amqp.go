// Package events implements the outward-facing collaborators of the
// booking core: broker-backed notification dispatch and cache
// invalidation. Both are best-effort; the booking transaction has already
// committed by the time these run.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/dinebook/dinebook/internal/domain"
)

const (
	QueueBookingCreated       = "booking.created"
	QueueBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is the wire payload published for lifecycle changes.
type BookingEvent struct {
	BookingID        int64                    `json:"booking_id"`
	UserID           int64                    `json:"user_id"`
	RestaurantID     int64                    `json:"restaurant_id"`
	TableID          int64                    `json:"table_id"`
	BookingTime      time.Time                `json:"booking_time"`
	PartySize        int                      `json:"party_size"`
	Status           domain.BookingStatusType `json:"status"`
	ConfirmationCode string                   `json:"confirmation_code"`
}

// AMQPNotifier publishes booking lifecycle events to durable queues. A
// connection is dialed per publish: publish volume is one event per
// booking mutation, and a fresh dial keeps the notifier free of broken
// channel state after broker restarts.
type AMQPNotifier struct {
	url string
	l   *logrus.Entry
}

func NewAMQPNotifier(url string, l *logrus.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		url: url,
		l:   l.WithField("component", "amqp_notifier"),
	}
}

func (n *AMQPNotifier) BookingCreated(ctx context.Context, booking *domain.Booking) error {
	return n.publish(ctx, QueueBookingCreated, booking)
}

func (n *AMQPNotifier) BookingStatusChanged(ctx context.Context, booking *domain.Booking) error {
	return n.publish(ctx, QueueBookingStatusChanged, booking)
}

func (n *AMQPNotifier) publish(ctx context.Context, queue string, booking *domain.Booking) error {
	conn, dialErr := amqp.Dial(n.url)
	if dialErr != nil {
		return fmt.Errorf("amqp dial: %w", dialErr)
	}
	defer func() { _ = conn.Close() }()

	ch, chErr := conn.Channel()
	if chErr != nil {
		return fmt.Errorf("amqp channel: %w", chErr)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare; durable so events survive broker restarts.
	if _, declareErr := ch.QueueDeclare(queue, true, false, false, false, nil); declareErr != nil {
		return fmt.Errorf("amqp queue declare %s: %w", queue, declareErr)
	}

	body, marshalErr := json.Marshal(BookingEvent{
		BookingID:        booking.ID,
		UserID:           booking.UserID,
		RestaurantID:     booking.RestaurantID,
		TableID:          booking.TableID,
		BookingTime:      booking.BookingTime,
		PartySize:        booking.PartySize,
		Status:           booking.Status,
		ConfirmationCode: booking.ConfirmationCode,
	})
	if marshalErr != nil {
		return fmt.Errorf("amqp marshal event: %w", marshalErr)
	}

	publishErr := ch.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if publishErr != nil {
		return fmt.Errorf("amqp publish to %s: %w", queue, publishErr)
	}

	n.l.WithFields(logrus.Fields{"queue": queue, "bookingID": booking.ID}).Debug("event published")
	return nil
}

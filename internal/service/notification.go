package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Omar1Ach/EcoRide-Backend-sub001/internal/domain"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationReservationCreated   NotificationType = "RESERVATION_CREATED"
	NotificationReservationCancelled NotificationType = "RESERVATION_CANCELLED"
	NotificationTripStarted          NotificationType = "TRIP_STARTED"
	NotificationTripEnded            NotificationType = "TRIP_ENDED"
	NotificationPaymentSuccess       NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed        NotificationType = "PAYMENT_FAILED"
	NotificationReceiptReady         NotificationType = "RECEIPT_READY"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	Data        map[string]interface{}
	CreatedAt   time.Time
}

// NotificationService records user-facing events. Actual delivery (SMS,
// push) is an external collaborator; this implementation logs what would be
// sent.
type NotificationService struct {
	log *logrus.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(log *logrus.Logger) *NotificationService {
	if log == nil {
		log = logrus.New()
	}
	return &NotificationService{log: log}
}

// NotifyReservationCreated tells the user their hold is active.
func (s *NotificationService) NotifyReservationCreated(ctx context.Context, res *domain.Reservation) error {
	return s.send(ctx, Notification{
		Type:        NotificationReservationCreated,
		RecipientID: res.UserID,
		Title:       "Vehicle Reserved",
		Message:     fmt.Sprintf("Your vehicle is held until %s.", res.ExpiresAt.Format("15:04:05")),
		Data: map[string]interface{}{
			"reservation_id": res.ID,
			"vehicle_id":     res.VehicleID,
			"expires_at":     res.ExpiresAt,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyReservationCancelled tells the user their hold is released.
func (s *NotificationService) NotifyReservationCancelled(ctx context.Context, res *domain.Reservation) error {
	return s.send(ctx, Notification{
		Type:        NotificationReservationCancelled,
		RecipientID: res.UserID,
		Title:       "Reservation Cancelled",
		Message:     "Your reservation was cancelled. No charge was made.",
		Data: map[string]interface{}{
			"reservation_id": res.ID,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripStarted tells the user their trip has begun.
func (s *NotificationService) NotifyTripStarted(ctx context.Context, trip *domain.Trip) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripStarted,
		RecipientID: trip.UserID,
		Title:       "Trip Started",
		Message:     fmt.Sprintf("Trip started on vehicle %s. Ride safe!", trip.VehicleCode),
		Data: map[string]interface{}{
			"trip_id":    trip.ID,
			"started_at": trip.StartedAt,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyTripEnded tells the user the final cost of their trip.
func (s *NotificationService) NotifyTripEnded(ctx context.Context, trip *domain.Trip, totalCost float64) error {
	return s.send(ctx, Notification{
		Type:        NotificationTripEnded,
		RecipientID: trip.UserID,
		Title:       "Trip Ended",
		Message:     fmt.Sprintf("Your trip ended. Total: %.2f", totalCost),
		Data: map[string]interface{}{
			"trip_id":    trip.ID,
			"total_cost": totalCost,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyPaymentFailed tells the user the charge did not go through and the
// trip remains open for a retry.
func (s *NotificationService) NotifyPaymentFailed(ctx context.Context, userID, tripID string, amount float64) error {
	return s.send(ctx, Notification{
		Type:        NotificationPaymentFailed,
		RecipientID: userID,
		Title:       "Payment Failed",
		Message:     "We could not charge your trip. Please retry ending the trip.",
		Data: map[string]interface{}{
			"trip_id": tripID,
			"amount":  amount,
		},
		CreatedAt: time.Now(),
	})
}

// NotifyReceiptReady tells the user their receipt is available.
func (s *NotificationService) NotifyReceiptReady(ctx context.Context, receipt *domain.Receipt) error {
	return s.send(ctx, Notification{
		Type:        NotificationReceiptReady,
		RecipientID: receipt.UserID,
		Title:       "Receipt Ready",
		Message:     fmt.Sprintf("Receipt %s for %.2f is available.", receipt.Number, receipt.TotalCost),
		Data: map[string]interface{}{
			"receipt_id": receipt.ID,
			"trip_id":    receipt.TripID,
		},
		CreatedAt: time.Now(),
	})
}

func (s *NotificationService) send(_ context.Context, n Notification) error {
	s.log.WithFields(logrus.Fields{
		"type":      n.Type,
		"recipient": n.RecipientID,
		"title":     n.Title,
	}).Info(n.Message)
	return nil
}

package notification

import (
	"context"
	"errors"
	"fmt"

	"medbook/database/repository"
	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Notifier delivers a push notification to one user.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// Sender is the part of the FCM client the notifier uses.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMNotifier looks up the user's FCM token and pushes through Firebase.
type FCMNotifier struct {
	Users  userRepo.UserRepository
	Client Sender
}

func NewFCMNotifier(users userRepo.UserRepository, client Sender) *FCMNotifier {
	return &FCMNotifier{Users: users, Client: client}
}

func (s *FCMNotifier) Notify(ctx context.Context, n models.Notification) error {
	u, err := s.Users.GetByID(ctx, n.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("could not find user %s: %w", n.UserID, err)
	}
	if u.FCMToken == "" {
		// No device registered; nothing to push to.
		return nil
	}

	data := map[string]string{"type": n.Type}
	for k, v := range n.Data {
		data[k] = v
	}

	msg := &messaging.Message{
		Token: u.FCMToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "bookings",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	id, err := s.Client.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	utils.GetLogger().Debug("Push sent", zap.String("userId", n.UserID), zap.String("type", n.Type), zap.String("messageId", id))
	return nil
}

// LogNotifier only logs. It is used when Firebase is not configured.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, n models.Notification) error {
	utils.GetLogger().Info("Notification",
		zap.String("userId", n.UserID),
		zap.String("type", n.Type),
		zap.String("title", n.Title),
		zap.String("body", n.Body))
	return nil
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"issp/internal/model"
	"issp/internal/repository"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	UnitName  string `json:"unit_name"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

type NotificationService interface {
	// Notify persists a notification and pushes it to connected websocket
	// clients. A push failure never fails the calling operation.
	Notify(ctx context.Context, notification *model.Notification)
	List(ctx context.Context, userID, unitName string, page, limit int) ([]NotificationResponse, int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID, unitName string) error
}

type notificationService struct {
	repo repository.NotificationRepository
	hub  interface{ GetBroadcast() chan []byte } // optional websocket hub
}

func NewNotificationService(repo repository.NotificationRepository, hub interface{ GetBroadcast() chan []byte }) NotificationService {
	return &notificationService{repo: repo, hub: hub}
}

func (s *notificationService) Notify(ctx context.Context, notification *model.Notification) {
	if err := s.repo.Create(ctx, notification); err != nil {
		log.Printf("notification: failed to persist %s for unit %q: %v", notification.Kind, notification.UnitName, err)
		return
	}
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": notification,
	})
	if err != nil {
		return
	}
	select {
	case s.hub.GetBroadcast() <- payload:
	default:
		// No listener ready; clients pick it up on their next poll.
	}
}

func (s *notificationService) List(ctx context.Context, userID, unitName string, page, limit int) ([]NotificationResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid user id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	notifications, total, err := s.repo.ListForUser(ctx, uid, unitName, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		res = append(res, NotificationResponse{
			ID:        n.ID.String(),
			Kind:      n.Kind,
			Title:     n.Title,
			Message:   n.Message,
			UnitName:  n.UnitName,
			Read:      n.Read,
			CreatedAt: n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	return res, total, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid notification id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.MarkRead(ctx, nid, uid)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID, unitName string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}
	return s.repo.MarkAllRead(ctx, uid, unitName)
}

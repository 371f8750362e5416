package repository

import (
	"context"

	"issp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, unitName string, page, limit int) ([]model.Notification, int64, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID, unitName string) error
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

// ListForUser returns notifications addressed to the user directly or to
// their whole unit, newest first.
func (r *notificationRepository) ListForUser(ctx context.Context, userID uuid.UUID, unitName string, page, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := GetDB(ctx, r.db)
	scope := db.Model(&model.Notification{}).
		Where("user_id = ? OR (user_id IS NULL AND unit_name = ?)", userID, unitName)
	if err := scope.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.
		Where("user_id = ? OR (user_id IS NULL AND unit_name = ?)", userID, unitName).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return GetDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("id = ? AND (user_id = ? OR user_id IS NULL)", id, userID).
		Update("read", true).Error
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, unitName string) error {
	return GetDB(ctx, r.db).
		Model(&model.Notification{}).
		Where("user_id = ? OR (user_id IS NULL AND unit_name = ?)", userID, unitName).
		Update("read", true).Error
}

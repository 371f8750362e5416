package repository

import (
	"context"

	"issp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestRepository interface {
	Create(ctx context.Context, req *model.ISSPRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ISSPRequest, error)
	ListByCycle(ctx context.Context, yearCycle string) ([]model.ISSPRequest, error)
	ListSubmitted(ctx context.Context, yearCycle string, page, limit int) ([]model.ISSPRequest, int64, error)
	ListByUnit(ctx context.Context, unitName, yearCycle string) ([]model.ISSPRequest, error)
	Update(ctx context.Context, req *model.ISSPRequest) error
	FindItem(ctx context.Context, id uuid.UUID) (*model.LineItem, error)
	UpdateItem(ctx context.Context, item *model.LineItem) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.ISSPRequest) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ISSPRequest, error) {
	var req model.ISSPRequest
	if err := GetDB(ctx, r.db).Preload("Items").Preload("User").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByCycle loads every request of one year cycle with items and
// submitting users, the working set of the grouping engine.
func (r *requestRepository) ListByCycle(ctx context.Context, yearCycle string) ([]model.ISSPRequest, error) {
	var requests []model.ISSPRequest
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("User").
		Where("year_cycle = ?", yearCycle).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListSubmitted(ctx context.Context, yearCycle string, page, limit int) ([]model.ISSPRequest, int64, error) {
	var requests []model.ISSPRequest
	var total int64

	db := GetDB(ctx, r.db)
	statuses := []string{model.RequestStatusSubmitted, model.RequestStatusResubmitted}
	query := db.Model(&model.ISSPRequest{}).Where("year_cycle = ? AND status IN ?", yearCycle, statuses)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("Items").Preload("User").
		Where("year_cycle = ? AND status IN ?", yearCycle, statuses).
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) ListByUnit(ctx context.Context, unitName, yearCycle string) ([]model.ISSPRequest, error) {
	var requests []model.ISSPRequest
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("User").
		Joins("LEFT JOIN users ON users.id = issp_requests.user_id").
		Where("issp_requests.year_cycle = ?", yearCycle).
		Where("issp_requests.unit = ? OR (issp_requests.unit IS NULL AND users.unit = ?)", unitName, unitName).
		Order("issp_requests.created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.ISSPRequest) error {
	return GetDB(ctx, r.db).Save(req).Error
}

func (r *requestRepository) FindItem(ctx context.Context, id uuid.UUID) (*model.LineItem, error) {
	var item model.LineItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *requestRepository) UpdateItem(ctx context.Context, item *model.LineItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

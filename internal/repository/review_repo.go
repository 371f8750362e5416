package repository

import (
	"context"
	"errors"

	"issp/internal/model"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Get(ctx context.Context, unitName, yearCycle string) (*model.ReviewStatus, error)
	FindOrCreate(ctx context.Context, unitName, yearCycle string) (*model.ReviewStatus, error)
	Update(ctx context.Context, status *model.ReviewStatus) error
	ListByCycle(ctx context.Context, yearCycle string) ([]model.ReviewStatus, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Get(ctx context.Context, unitName, yearCycle string) (*model.ReviewStatus, error) {
	var status model.ReviewStatus
	err := GetDB(ctx, r.db).
		Where("unit_name = ? AND year_cycle = ?", unitName, yearCycle).
		First(&status).Error
	if err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *reviewRepository) FindOrCreate(ctx context.Context, unitName, yearCycle string) (*model.ReviewStatus, error) {
	status, err := r.Get(ctx, unitName, yearCycle)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created := model.ReviewStatus{
		UnitName:           unitName,
		YearCycle:          yearCycle,
		PresidentialStatus: model.PresidentialPending,
		DICTStatus:         model.DICTPending,
	}
	if err := GetDB(ctx, r.db).Create(&created).Error; err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *reviewRepository) Update(ctx context.Context, status *model.ReviewStatus) error {
	return GetDB(ctx, r.db).Save(status).Error
}

func (r *reviewRepository) ListByCycle(ctx context.Context, yearCycle string) ([]model.ReviewStatus, error) {
	var statuses []model.ReviewStatus
	err := GetDB(ctx, r.db).
		Preload("UpdatedBy").
		Where("year_cycle = ?", yearCycle).
		Order("unit_name ASC").
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	return statuses, nil
}

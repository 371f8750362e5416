package repository

import (
	"context"

	"issp/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	Get(ctx context.Context, unitName, yearCycle, page string) (*model.ProfileSection, error)
	Upsert(ctx context.Context, section *model.ProfileSection) error
	ListByUnit(ctx context.Context, unitName, yearCycle string) ([]model.ProfileSection, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Get(ctx context.Context, unitName, yearCycle, page string) (*model.ProfileSection, error) {
	var section model.ProfileSection
	err := GetDB(ctx, r.db).
		Where("unit_name = ? AND year_cycle = ? AND page = ?", unitName, yearCycle, page).
		First(&section).Error
	if err != nil {
		return nil, err
	}
	return &section, nil
}

// Upsert writes a section keyed on (unit, cycle, page), replacing the
// field document on conflict.
func (r *profileRepository) Upsert(ctx context.Context, section *model.ProfileSection) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "unit_name"}, {Name: "year_cycle"}, {Name: "page"}},
		DoUpdates: clause.AssignmentColumns([]string{"fields", "updated_at"}),
	}).Create(section).Error
}

func (r *profileRepository) ListByUnit(ctx context.Context, unitName, yearCycle string) ([]model.ProfileSection, error) {
	var sections []model.ProfileSection
	err := GetDB(ctx, r.db).
		Where("unit_name = ? AND year_cycle = ?", unitName, yearCycle).
		Order("page ASC").
		Find(&sections).Error
	if err != nil {
		return nil, err
	}
	return sections, nil
}

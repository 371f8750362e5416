package service

import (
	"context"
	"fmt"

	"issp/internal/model"
	"issp/internal/repository"
)

// UnitGroupService powers the admin "Unit Submission Status" view: the
// flat request list grouped per unit with derived display statuses.
type UnitGroupService interface {
	ListUnitGroups(ctx context.Context, yearCycle string, filter UnitGroupFilter) (UnitGroupPage, error)
	GetUnitGroup(ctx context.Context, unitName, yearCycle string) (*model.UnitGroup, error)
}

type unitGroupService struct {
	repo repository.RequestRepository
}

func NewUnitGroupService(repo repository.RequestRepository) UnitGroupService {
	return &unitGroupService{repo: repo}
}

// ListUnitGroups recomputes the grouping from the full request list of
// the cycle on every call, then filters and pages it.
func (s *unitGroupService) ListUnitGroups(ctx context.Context, yearCycle string, filter UnitGroupFilter) (UnitGroupPage, error) {
	requests, err := s.repo.ListByCycle(ctx, yearCycle)
	if err != nil {
		return UnitGroupPage{}, fmt.Errorf("failed to load requests: %w", err)
	}
	groups := BuildUnitGroups(requests, yearCycle)
	return FilterUnitGroups(groups, filter), nil
}

func (s *unitGroupService) GetUnitGroup(ctx context.Context, unitName, yearCycle string) (*model.UnitGroup, error) {
	requests, err := s.repo.ListByCycle(ctx, yearCycle)
	if err != nil {
		return nil, fmt.Errorf("failed to load requests: %w", err)
	}
	groups := BuildUnitGroups(requests, yearCycle)
	group, ok := groups[unitName]
	if !ok {
		return nil, fmt.Errorf("unit '%s' has no requests in cycle %s", unitName, yearCycle)
	}
	return &group, nil
}

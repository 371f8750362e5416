package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"issp/internal/model"
	"issp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type LineItemDTO struct {
	Name           string         `json:"name" binding:"required"`
	Price          float64        `json:"price" binding:"gte=0"`
	Quantity       int            `json:"quantity" binding:"gte=0"`
	QuantityByYear map[string]int `json:"quantity_by_year"`
	Specification  string         `json:"specification"`
	Purpose        string         `json:"purpose"`
	Range          string         `json:"range" binding:"omitempty,oneof=low mid high"`
}

type SubmitRequestDTO struct {
	YearCycle string        `json:"year_cycle" binding:"required"`
	Unit      *string       `json:"unit"` // optional override of the submitting user's unit
	Items     []LineItemDTO `json:"items" binding:"required,dive"`
}

type UpdateItemDTO struct {
	Price         *float64 `json:"price" binding:"omitempty,gte=0"`
	Quantity      *int     `json:"quantity" binding:"omitempty,gte=0"`
	Specification *string  `json:"specification"`
	Purpose       *string  `json:"purpose"`
}

type DisapproveItemDTO struct {
	Reason string `json:"reason"`
}

// --- Interface ---

type RequestService interface {
	SubmitRequest(ctx context.Context, userID string, req SubmitRequestDTO) (*model.ISSPRequest, error)
	ResubmitRequest(ctx context.Context, userID, requestID string) (*model.ISSPRequest, error)
	ListSubmitted(ctx context.Context, yearCycle string, page, limit int) ([]model.ISSPRequest, int64, error)
	GetUnitRequests(ctx context.Context, unitName, yearCycle string) ([]model.ISSPRequest, error)
	UpdateItem(ctx context.Context, itemID, userID string, req UpdateItemDTO) (*model.ISSPRequest, error)
	ApproveItem(ctx context.Context, itemID, userID string) (*model.ISSPRequest, error)
	DisapproveItem(ctx context.Context, itemID, userID, reason string) (*model.ISSPRequest, error)
}

type requestService struct {
	repo     repository.RequestRepository
	txMgr    repository.TransactionManager
	audit    repository.AuditRepository
	notifier NotificationService
}

func NewRequestService(repo repository.RequestRepository, txMgr repository.TransactionManager, audit repository.AuditRepository, notifier NotificationService) RequestService {
	return &requestService{repo: repo, txMgr: txMgr, audit: audit, notifier: notifier}
}

// --- Implementation ---

func (s *requestService) SubmitRequest(ctx context.Context, userID string, req SubmitRequestDTO) (*model.ISSPRequest, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	if len(ParseYearCycle(req.YearCycle)) == 0 {
		return nil, errors.New("year_cycle must be formatted STARTYEAR-ENDYEAR")
	}

	request := model.ISSPRequest{
		Unit:      req.Unit,
		YearCycle: req.YearCycle,
		Status:    model.RequestStatusSubmitted,
		UserID:    &uid,
	}
	for _, item := range req.Items {
		request.Items = append(request.Items, buildLineItem(item))
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.repo.Create(txCtx, &request); createErr != nil {
			return fmt.Errorf("failed to create request: %w", createErr)
		}
		return s.logAction(txCtx, &uid, model.ActionSubmitRequest, request.ID.String(), req.YearCycle, map[string]interface{}{
			"year_cycle": req.YearCycle,
			"item_count": len(req.Items),
		})
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, request.ID)
}

// ResubmitRequest flags an existing request as resubmitted. The original
// line items are kept; revised_at records the resubmission time.
func (s *requestService) ResubmitRequest(ctx context.Context, userID, requestID string) (*model.ISSPRequest, error) {
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request id: %w", err)
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("request not found: %w", err)
	}
	if request.Status != model.RequestStatusRejected && request.Status != model.RequestStatusSubmitted {
		return nil, fmt.Errorf("cannot resubmit a request in status '%s'", request.Status)
	}

	now := time.Now()
	resubmitted := model.RequestStatusResubmitted
	request.Status = model.RequestStatusResubmitted
	request.RevisionStatus = &resubmitted
	request.RevisedAt = &now

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.repo.Update(txCtx, request); updateErr != nil {
			return fmt.Errorf("failed to resubmit request: %w", updateErr)
		}
		return s.logAction(txCtx, &uid, model.ActionResubmitRequest, request.ID.String(), request.YearCycle, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, request.ID)
}

func (s *requestService) ListSubmitted(ctx context.Context, yearCycle string, page, limit int) ([]model.ISSPRequest, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	return s.repo.ListSubmitted(ctx, yearCycle, page, limit)
}

func (s *requestService) GetUnitRequests(ctx context.Context, unitName, yearCycle string) ([]model.ISSPRequest, error) {
	return s.repo.ListByUnit(ctx, unitName, yearCycle)
}

// UpdateItem edits a line item's price/quantity/specification/purpose and
// returns the refreshed parent request, the replacement copy clients cache.
func (s *requestService) UpdateItem(ctx context.Context, itemID, userID string, req UpdateItemDTO) (*model.ISSPRequest, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if req.Price != nil {
		if *req.Price < 0 {
			return nil, errors.New("price must not be negative")
		}
		item.Price = decimal.NewFromFloat(*req.Price)
	}
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return nil, errors.New("quantity must not be negative")
		}
		item.Quantity = *req.Quantity
	}
	if req.Specification != nil {
		item.Specification = *req.Specification
	}
	if req.Purpose != nil {
		item.Purpose = *req.Purpose
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.repo.UpdateItem(txCtx, item); updateErr != nil {
			return fmt.Errorf("failed to update item: %w", updateErr)
		}
		return s.logAction(txCtx, &uid, model.ActionUpdateItem, item.ID.String(), item.Name, map[string]interface{}{
			"request_id": item.RequestID.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.repo.FindByID(ctx, item.RequestID)
}

func (s *requestService) ApproveItem(ctx context.Context, itemID, userID string) (*model.ISSPRequest, error) {
	return s.decideItem(ctx, itemID, userID, model.ItemStatusApproved, "")
}

// DisapproveItem requires a reason; the check happens before any write.
func (s *requestService) DisapproveItem(ctx context.Context, itemID, userID, reason string) (*model.ISSPRequest, error) {
	if reason == "" {
		return nil, errors.New("a reason is required to disapprove an item")
	}
	return s.decideItem(ctx, itemID, userID, model.ItemStatusDisapproved, reason)
}

func (s *requestService) decideItem(ctx context.Context, itemID, userID, newStatus, reason string) (*model.ISSPRequest, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	// pending -> approved/disapproved is one-way through this API; only a
	// backend-side reset can return an item to pending.
	if item.ApprovalStatus != model.ItemStatusPending {
		return nil, fmt.Errorf("item already decided as '%s'", item.ApprovalStatus)
	}

	item.ApprovalStatus = newStatus

	action := model.ActionApproveItem
	kind := model.NotifyItemApproved
	if newStatus == model.ItemStatusDisapproved {
		action = model.ActionDisapproveItem
		kind = model.NotifyItemDisapproved
	}

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.repo.UpdateItem(txCtx, item); updateErr != nil {
			return fmt.Errorf("failed to update item: %w", updateErr)
		}
		return s.logAction(txCtx, &uid, action, item.ID.String(), item.Name, map[string]interface{}{
			"request_id": item.RequestID.String(),
			"reason":     reason,
		})
	})
	if err != nil {
		return nil, err
	}

	request, err := s.repo.FindByID(ctx, item.RequestID)
	if err != nil {
		return nil, err
	}

	unitName, _ := ResolveUnitName(request)
	message := fmt.Sprintf("Line item '%s' was approved.", item.Name)
	if newStatus == model.ItemStatusDisapproved {
		message = fmt.Sprintf("Line item '%s' was disapproved: %s", item.Name, reason)
	}
	s.notifier.Notify(ctx, &model.Notification{
		UnitName: unitName,
		Kind:     kind,
		Title:    "Line item review",
		Message:  message,
	})

	return request, nil
}

func (s *requestService) findItem(ctx context.Context, itemID string) (*model.LineItem, error) {
	id, err := uuid.Parse(itemID)
	if err != nil {
		return nil, fmt.Errorf("invalid item id: %w", err)
	}
	item, err := s.repo.FindItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item not found: %w", err)
	}
	return item, nil
}

func (s *requestService) logAction(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
	payload := "{}"
	if details != nil {
		raw, _ := json.Marshal(details)
		payload = string(raw)
	}
	entry := model.AuditLog{
		UserID:     userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    payload,
	}
	if err := s.audit.Log(ctx, &entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func buildLineItem(dto LineItemDTO) model.LineItem {
	qbyRaw := "{}"
	if len(dto.QuantityByYear) > 0 {
		raw, _ := json.Marshal(dto.QuantityByYear)
		qbyRaw = string(raw)
	}
	itemRange := dto.Range
	if itemRange == "" {
		itemRange = rangeForPrice(dto.Price)
	}
	return model.LineItem{
		Name:           dto.Name,
		ApprovalStatus: model.ItemStatusPending,
		Price:          decimal.NewFromFloat(dto.Price),
		Quantity:       dto.Quantity,
		QuantityByYear: qbyRaw,
		Specification:  dto.Specification,
		Purpose:        dto.Purpose,
		Range:          itemRange,
	}
}

// rangeForPrice assigns the coarse low/mid/high tag used by filters when
// the submitter does not set one.
func rangeForPrice(price float64) string {
	switch {
	case price <= 50000:
		return model.ItemRangeLow
	case price <= 200000:
		return model.ItemRangeMid
	default:
		return model.ItemRangeHigh
	}
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"issp/internal/model"
	"issp/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type SetPresidentialStatusDTO struct {
	Status string `json:"status" binding:"required,oneof=PENDING ENDORSED RETURNED"`
}

type SetDICTStatusDTO struct {
	Status string `json:"status" binding:"required,oneof=PENDING SUBMITTED APPROVED DISAPPROVED"`
}

// --- Interface ---

type ReviewService interface {
	ListReviewStatuses(ctx context.Context, yearCycle string) ([]model.ReviewStatus, error)
	GetReviewStatus(ctx context.Context, unitName, yearCycle string) (*model.ReviewStatus, error)
	// CompleteUnitReview marks the unit's internal review done for the
	// cycle and notifies its coordinators.
	CompleteUnitReview(ctx context.Context, unitName, yearCycle, userID string) (*model.ReviewStatus, error)
	SetPresidentialStatus(ctx context.Context, unitName, yearCycle, status, userID string) (*model.ReviewStatus, error)
	SetDICTStatus(ctx context.Context, unitName, yearCycle, status, userID string) (*model.ReviewStatus, error)
	// AttachDICTDocument records the stored path of an uploaded
	// DICT-approved document and moves a PENDING status to SUBMITTED.
	AttachDICTDocument(ctx context.Context, unitName, yearCycle, path, userID string) (*model.ReviewStatus, error)
}

type reviewService struct {
	repo     repository.ReviewRepository
	txMgr    repository.TransactionManager
	audit    repository.AuditRepository
	notifier NotificationService
}

func NewReviewService(repo repository.ReviewRepository, txMgr repository.TransactionManager, audit repository.AuditRepository, notifier NotificationService) ReviewService {
	return &reviewService{repo: repo, txMgr: txMgr, audit: audit, notifier: notifier}
}

// --- Implementation ---

func (s *reviewService) ListReviewStatuses(ctx context.Context, yearCycle string) ([]model.ReviewStatus, error) {
	return s.repo.ListByCycle(ctx, yearCycle)
}

func (s *reviewService) GetReviewStatus(ctx context.Context, unitName, yearCycle string) (*model.ReviewStatus, error) {
	return s.repo.FindOrCreate(ctx, unitName, yearCycle)
}

func (s *reviewService) CompleteUnitReview(ctx context.Context, unitName, yearCycle, userID string) (*model.ReviewStatus, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	status, err := s.repo.FindOrCreate(ctx, unitName, yearCycle)
	if err != nil {
		return nil, err
	}
	if status.Completed {
		return nil, fmt.Errorf("review for unit '%s' is already completed", unitName)
	}

	now := time.Now()
	status.Completed = true
	status.CompletedAt = &now
	status.UpdatedByID = &uid

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.repo.Update(txCtx, status); updateErr != nil {
			return fmt.Errorf("failed to complete review: %w", updateErr)
		}
		return s.logAction(txCtx, &uid, model.ActionCompleteReview, unitName, yearCycle, nil)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, &model.Notification{
		UnitName: unitName,
		Kind:     model.NotifyReviewComplete,
		Title:    "Review completed",
		Message:  fmt.Sprintf("The review of your %s submission has been completed.", yearCycle),
	})

	return status, nil
}

func (s *reviewService) SetPresidentialStatus(ctx context.Context, unitName, yearCycle, status, userID string) (*model.ReviewStatus, error) {
	return s.setStatus(ctx, unitName, yearCycle, userID, model.ActionSetPresidentialStatus, func(rs *model.ReviewStatus) error {
		switch status {
		case model.PresidentialPending, model.PresidentialEndorsed, model.PresidentialReturned:
			rs.PresidentialStatus = status
			return nil
		}
		return fmt.Errorf("invalid presidential status '%s'", status)
	})
}

func (s *reviewService) SetDICTStatus(ctx context.Context, unitName, yearCycle, status, userID string) (*model.ReviewStatus, error) {
	return s.setStatus(ctx, unitName, yearCycle, userID, model.ActionSetDICTStatus, func(rs *model.ReviewStatus) error {
		switch status {
		case model.DICTPending, model.DICTSubmitted, model.DICTApproved, model.DICTDisapproved:
			rs.DICTStatus = status
			return nil
		}
		return fmt.Errorf("invalid DICT status '%s'", status)
	})
}

func (s *reviewService) AttachDICTDocument(ctx context.Context, unitName, yearCycle, path, userID string) (*model.ReviewStatus, error) {
	return s.setStatus(ctx, unitName, yearCycle, userID, model.ActionUploadDICTDocument, func(rs *model.ReviewStatus) error {
		rs.DICTDocumentPath = path
		if rs.DICTStatus == model.DICTPending {
			rs.DICTStatus = model.DICTSubmitted
		}
		return nil
	})
}

func (s *reviewService) setStatus(ctx context.Context, unitName, yearCycle, userID, action string, mutate func(*model.ReviewStatus) error) (*model.ReviewStatus, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}

	status, err := s.repo.FindOrCreate(ctx, unitName, yearCycle)
	if err != nil {
		return nil, err
	}
	if err := mutate(status); err != nil {
		return nil, err
	}
	status.UpdatedByID = &uid

	err = s.txMgr.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.repo.Update(txCtx, status); updateErr != nil {
			return fmt.Errorf("failed to update review status: %w", updateErr)
		}
		return s.logAction(txCtx, &uid, action, unitName, yearCycle, map[string]interface{}{
			"presidential_status": status.PresidentialStatus,
			"dict_status":         status.DICTStatus,
		})
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *reviewService) logAction(ctx context.Context, userID *uuid.UUID, action, entityID, entityName string, details map[string]interface{}) error {
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

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"issp/internal/model"
	"issp/internal/repository"

	"github.com/google/uuid"
)

// ReportService delegates consolidated-report rendering to an external
// renderer. This service's only contract is: send the cycle's data,
// receive a PDF blob, hand it back with the canonical download filename.
type ReportService interface {
	GenerateISSPReport(ctx context.Context, yearCycle, userID string) (io.ReadCloser, string, error)
}

type reportService struct {
	rendererURL string
	client      *http.Client
	requests    repository.RequestRepository
	profiles    repository.ProfileRepository
	audit       repository.AuditRepository
}

func NewReportService(rendererURL string, requests repository.RequestRepository, profiles repository.ProfileRepository, audit repository.AuditRepository) ReportService {
	return &reportService{
		rendererURL: rendererURL,
		client:      http.DefaultClient,
		requests:    requests,
		profiles:    profiles,
		audit:       audit,
	}
}

// GenerateISSPReport posts the cycle's grouped submissions, unit profiles
// and price distribution to the renderer and streams the PDF back. The
// returned filename follows the ISSP-report-{yearCycle}.pdf convention.
func (s *reportService) GenerateISSPReport(ctx context.Context, yearCycle, userID string) (io.ReadCloser, string, error) {
	if s.rendererURL == "" {
		return nil, "", errors.New("report renderer is not configured (REPORT_RENDERER_URL)")
	}

	requests, err := s.requests.ListByCycle(ctx, yearCycle)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load requests: %w", err)
	}

	groups := BuildUnitGroups(requests, yearCycle)
	unitProfiles := make(map[string][]model.ProfileSection, len(groups))
	for unit := range groups {
		sections, listErr := s.profiles.ListByUnit(ctx, unit, yearCycle)
		if listErr != nil {
			return nil, "", fmt.Errorf("failed to load profiles for unit '%s': %w", unit, listErr)
		}
		unitProfiles[unit] = sections
	}

	payload, err := json.Marshal(map[string]interface{}{
		"year_cycle":         yearCycle,
		"unit_groups":        groups,
		"unit_profiles":      unitProfiles,
		"price_distribution": ComputePriceDistribution(requests, yearCycle),
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode report payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.rendererURL, bytes.NewReader(payload))
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("renderer request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		_ = resp.Body.Close()
		return nil, "", fmt.Errorf("renderer returned %d: %s", resp.StatusCode, string(body))
	}

	if uid, parseErr := uuid.Parse(userID); parseErr == nil {
		entry := model.AuditLog{
			UserID:     &uid,
			Action:     model.ActionGenerateReport,
			EntityID:   yearCycle,
			EntityName: "consolidated ISSP report",
			Details:    fmt.Sprintf(`{"unit_count": %d}`, len(groups)),
		}
		if logErr := s.audit.Log(ctx, &entry); logErr != nil {
			_ = resp.Body.Close()
			return nil, "", fmt.Errorf("failed to write audit log: %w", logErr)
		}
	}

	filename := fmt.Sprintf("ISSP-report-%s.pdf", yearCycle)
	return resp.Body, filename, nil
}

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"issp/internal/autosave"
	"issp/internal/model"
	"issp/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// tableSpec pins a table-row array field of a profile page to its fixed
// editor length.
type tableSpec struct {
	key  string
	rows int
}

// The fixed-length table fields per page. Arrays are padded/truncated to
// exactly these lengths on every load; fully-blank rows are stripped
// before persisting.
var pageTableSpecs = map[string][]tableSpec{
	model.PageOrgProfile:        {{key: "organizational_units", rows: model.OrgUnitRows}},
	model.PageISStrategy:        {{key: "strategic_concerns", rows: model.StrategicConcernRows}},
	model.PageResourceReqs:      {{key: "resource_deployment", rows: model.ResourceDeploymentRows}},
	model.PageInvestmentProgram: {{key: "cost_breakdown", rows: model.CostBreakdownRows}},
}

// --- DTOs ---

type ProfileSectionResponse struct {
	UnitName  string                 `json:"unit_name"`
	YearCycle string                 `json:"year_cycle"`
	Page      string                 `json:"page"`
	Fields    map[string]interface{} `json:"fields"`
	Dirty     bool                   `json:"dirty"` // an autosave is still pending for this section
}

type SaveSectionDTO struct {
	Fields map[string]interface{} `json:"fields" binding:"required"`
}

// --- Interface ---

type ProfileService interface {
	GetSection(ctx context.Context, unitName, yearCycle, page string) (*ProfileSectionResponse, error)
	// SaveSection persists immediately (the manual Save button); errors
	// surface to the caller.
	SaveSection(ctx context.Context, unitName, yearCycle, page, userID string, req SaveSectionDTO) (*ProfileSectionResponse, error)
	// SaveDraft schedules a debounced save; failures are logged only and
	// the section stays dirty for the next flush or manual save.
	SaveDraft(unitName, yearCycle, page string, fields map[string]interface{})
	// Navigate flushes any pending draft of the current page before
	// resolving the next/previous page of the wizard.
	Navigate(ctx context.Context, unitName, yearCycle, page string, forward bool) (string, error)
	Shutdown()
}

type profileService struct {
	repo  repository.ProfileRepository
	audit repository.AuditRepository
	saver *autosave.Controller
}

func NewProfileService(repo repository.ProfileRepository, audit repository.AuditRepository, saver *autosave.Controller) ProfileService {
	return &profileService{repo: repo, audit: audit, saver: saver}
}

// --- Pure helpers ---

// sectionKey identifies one editable section in the autosave controller.
// Timers are per-section, never globally coordinated.
func sectionKey(unitName, yearCycle, page string) string {
	return unitName + "|" + yearCycle + "|" + page
}

// PadRows pads or truncates a row array to exactly length rows. Missing
// rows become empty objects so the editor always renders a full table.
func PadRows(rows []interface{}, length int) []interface{} {
	out := make([]interface{}, 0, length)
	for i := 0; i < length; i++ {
		if i < len(rows) && rows[i] != nil {
			out = append(out, rows[i])
			continue
		}
		out = append(out, map[string]interface{}{})
	}
	return out
}

// StripBlankRows removes rows whose every value is nil or blank text.
func StripBlankRows(rows []interface{}) []interface{} {
	out := make([]interface{}, 0, len(rows))
	for _, row := range rows {
		if !isBlankRow(row) {
			out = append(out, row)
		}
	}
	return out
}

func isBlankRow(row interface{}) bool {
	if row == nil {
		return true
	}
	cells, ok := row.(map[string]interface{})
	if !ok {
		return false
	}
	for _, v := range cells {
		switch cell := v.(type) {
		case nil:
		case string:
			if strings.TrimSpace(cell) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// NormalizeForLoad restores the fixed-length invariant of every table
// field on the page.
func NormalizeForLoad(page string, fields map[string]interface{}) map[string]interface{} {
	for _, spec := range pageTableSpecs[page] {
		rows, _ := fields[spec.key].([]interface{})
		fields[spec.key] = PadRows(rows, spec.rows)
	}
	return fields
}

// NormalizeForSave drops fully-blank table rows; the fixed length comes
// back via pad-to-length on the next load.
func NormalizeForSave(page string, fields map[string]interface{}) map[string]interface{} {
	for _, spec := range pageTableSpecs[page] {
		if rows, ok := fields[spec.key].([]interface{}); ok {
			fields[spec.key] = StripBlankRows(rows)
		}
	}
	return fields
}

// NextPage resolves the wizard page after (or before) the given one.
func NextPage(page string, forward bool) (string, error) {
	for i, p := range model.PageSequence {
		if p != page {
			continue
		}
		if forward {
			if i+1 >= len(model.PageSequence) {
				return "", errors.New("already on the last page")
			}
			return model.PageSequence[i+1], nil
		}
		if i == 0 {
			return "", errors.New("already on the first page")
		}
		return model.PageSequence[i-1], nil
	}
	return "", fmt.Errorf("unknown page '%s'", page)
}

func validPage(page string) bool {
	for _, p := range model.PageSequence {
		if p == page {
			return true
		}
	}
	return false
}

// --- Implementation ---

func (s *profileService) GetSection(ctx context.Context, unitName, yearCycle, page string) (*ProfileSectionResponse, error) {
	if !validPage(page) {
		return nil, fmt.Errorf("unknown page '%s'", page)
	}

	fields := map[string]interface{}{}
	section, err := s.repo.Get(ctx, unitName, yearCycle, page)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if section != nil {
		if err := json.Unmarshal([]byte(section.Fields), &fields); err != nil {
			return nil, fmt.Errorf("corrupt section document: %w", err)
		}
	}

	return &ProfileSectionResponse{
		UnitName:  unitName,
		YearCycle: yearCycle,
		Page:      page,
		Fields:    NormalizeForLoad(page, fields),
		Dirty:     s.saver.Dirty(sectionKey(unitName, yearCycle, page)),
	}, nil
}

func (s *profileService) SaveSection(ctx context.Context, unitName, yearCycle, page, userID string, req SaveSectionDTO) (*ProfileSectionResponse, error) {
	if !validPage(page) {
		return nil, fmt.Errorf("unknown page '%s'", page)
	}

	// The manual save supersedes any pending draft.
	s.saver.Cancel(sectionKey(unitName, yearCycle, page))

	if err := s.persist(ctx, unitName, yearCycle, page, req.Fields); err != nil {
		return nil, err
	}

	if uid, err := uuid.Parse(userID); err == nil {
		details, _ := json.Marshal(map[string]interface{}{"page": page, "year_cycle": yearCycle})
		entry := model.AuditLog{
			UserID:     &uid,
			Action:     model.ActionSaveProfile,
			EntityID:   unitName,
			EntityName: "profile page " + page,
			Details:    string(details),
		}
		if err := s.audit.Log(ctx, &entry); err != nil {
			log.Printf("profile: audit log failed for %s/%s: %v", unitName, page, err)
		}
	}

	return s.GetSection(ctx, unitName, yearCycle, page)
}

func (s *profileService) SaveDraft(unitName, yearCycle, page string, fields map[string]interface{}) {
	if !validPage(page) {
		return
	}
	// Snapshot the fields as of this edit; a later edit replaces the
	// pending save entirely.
	snapshot := fields
	s.saver.Schedule(sectionKey(unitName, yearCycle, page), func() error {
		return s.persist(context.Background(), unitName, yearCycle, page, snapshot)
	})
}

func (s *profileService) Navigate(ctx context.Context, unitName, yearCycle, page string, forward bool) (string, error) {
	next, err := NextPage(page, forward)
	if err != nil {
		return "", err
	}
	// Dirty sections must hit the store before the page transition
	// resolves; a clean section navigates immediately.
	if err := s.saver.Flush(sectionKey(unitName, yearCycle, page)); err != nil {
		return "", fmt.Errorf("failed to save page %s before leaving: %w", page, err)
	}
	return next, nil
}

func (s *profileService) Shutdown() {
	s.saver.CancelAll()
}

func (s *profileService) persist(ctx context.Context, unitName, yearCycle, page string, fields map[string]interface{}) error {
	cleaned := NormalizeForSave(page, fields)
	raw, err := json.Marshal(cleaned)
	if err != nil {
		return fmt.Errorf("failed to encode section: %w", err)
	}
	section := model.ProfileSection{
		UnitName:  unitName,
		YearCycle: yearCycle,
		Page:      page,
		Fields:    string(raw),
	}
	return s.repo.Upsert(ctx, &section)
}

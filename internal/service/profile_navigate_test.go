package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"issp/internal/autosave"
	"issp/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubProfileRepo struct {
	mu      sync.Mutex
	saved   []model.ProfileSection
	saveErr error
}

func (s *stubProfileRepo) Get(ctx context.Context, unitName, yearCycle, page string) (*model.ProfileSection, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubProfileRepo) Upsert(ctx context.Context, section *model.ProfileSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, *section)
	return nil
}

func (s *stubProfileRepo) ListByUnit(ctx context.Context, unitName, yearCycle string) ([]model.ProfileSection, error) {
	return nil, nil
}

func (s *stubProfileRepo) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

type stubAuditRepo struct {
	mu      sync.Mutex
	entries []model.AuditLog
}

func (s *stubAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

func TestNavigateFlushesDirtyDraftBeforeReturning(t *testing.T) {
	repo := &stubProfileRepo{}
	saver := autosave.New(time.Hour) // timer never fires on its own
	defer saver.CancelAll()
	svc := NewProfileService(repo, &stubAuditRepo{}, saver)

	svc.SaveDraft("CCIS", "2024-2026", model.PageOrgProfile, map[string]interface{}{"mandate": "instruction"})
	require.Equal(t, 0, repo.savedCount())

	next, err := svc.Navigate(context.Background(), "CCIS", "2024-2026", model.PageOrgProfile, true)
	require.NoError(t, err)
	assert.Equal(t, model.PageISStrategy, next)

	// The pending draft landed in the store before Navigate returned.
	require.Equal(t, 1, repo.savedCount())
	assert.Equal(t, model.PageOrgProfile, repo.saved[0].Page)
	assert.False(t, saver.Dirty("CCIS|2024-2026|"+model.PageOrgProfile))
}

func TestNavigateFailedSaveBlocksPageChange(t *testing.T) {
	repo := &stubProfileRepo{saveErr: errors.New("store down")}
	saver := autosave.New(time.Hour)
	defer saver.CancelAll()
	svc := NewProfileService(repo, &stubAuditRepo{}, saver)

	svc.SaveDraft("CCIS", "2024-2026", model.PageOrgProfile, map[string]interface{}{"mandate": "instruction"})

	next, err := svc.Navigate(context.Background(), "CCIS", "2024-2026", model.PageOrgProfile, true)
	require.Error(t, err)
	assert.Empty(t, next)

	// The section stays dirty for a later retry or manual save.
	assert.True(t, saver.Dirty("CCIS|2024-2026|"+model.PageOrgProfile))
	assert.Equal(t, 0, repo.savedCount())
}

func TestNavigateCleanSectionSkipsStore(t *testing.T) {
	repo := &stubProfileRepo{}
	saver := autosave.New(time.Hour)
	defer saver.CancelAll()
	svc := NewProfileService(repo, &stubAuditRepo{}, saver)

	next, err := svc.Navigate(context.Background(), "CCIS", "2024-2026", model.PageISStrategy, false)
	require.NoError(t, err)
	assert.Equal(t, model.PageOrgProfile, next)
	assert.Equal(t, 0, repo.savedCount())
}

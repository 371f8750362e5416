package service

import (
	"fmt"
	"testing"
	"time"

	"issp/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newRequest(unit string, status string, updated time.Time) model.ISSPRequest {
	return model.ISSPRequest{
		ID:        uuid.New(),
		Unit:      strPtr(unit),
		YearCycle: "2024-2026",
		Status:    status,
		UpdatedAt: updated,
		CreatedAt: updated.Add(-time.Hour),
	}
}

func TestResolveUnitNameFallbackChain(t *testing.T) {
	base := time.Now()

	withOverride := newRequest("CCIS", model.RequestStatusSubmitted, base)
	name, source := ResolveUnitName(&withOverride)
	assert.Equal(t, "CCIS", name)
	assert.Equal(t, UnitSourceRequestField, source)

	// A present-but-blank override wins over the user's unit; the blank
	// value later excludes the request from grouping.
	blankOverride := newRequest("  ", model.RequestStatusSubmitted, base)
	blankOverride.User = &model.User{Unit: "CAS"}
	name, source = ResolveUnitName(&blankOverride)
	assert.Equal(t, "  ", name)
	assert.Equal(t, UnitSourceRequestField, source)

	fromUser := model.ISSPRequest{User: &model.User{Unit: "CAS"}}
	name, source = ResolveUnitName(&fromUser)
	assert.Equal(t, "CAS", name)
	assert.Equal(t, UnitSourceUserField, source)

	orphan := model.ISSPRequest{}
	name, source = ResolveUnitName(&orphan)
	assert.Equal(t, UnknownUnitName, name)
	assert.Equal(t, UnitSourceUnknown, source)
}

func TestBuildUnitGroupsExcludesBlankUnitsAndOtherCycles(t *testing.T) {
	base := time.Now()
	requests := []model.ISSPRequest{
		newRequest("CCIS", model.RequestStatusSubmitted, base),
		newRequest("   ", model.RequestStatusSubmitted, base), // whitespace resolves blank
		newRequest("CAS", model.RequestStatusSubmitted, base),
	}
	otherCycle := newRequest("CBA", model.RequestStatusSubmitted, base)
	otherCycle.YearCycle = "2021-2023"
	requests = append(requests, otherCycle)

	groups := BuildUnitGroups(requests, "2024-2026")

	assert.Len(t, groups, 2)
	assert.Contains(t, groups, "CCIS")
	assert.Contains(t, groups, "CAS")
	assert.NotContains(t, groups, "CBA")
}

func TestBuildUnitGroupsResubmittedSortsFirst(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	older := newRequest("CCIS", model.RequestStatusResubmitted, base.Add(-48*time.Hour))
	newest := newRequest("CCIS", model.RequestStatusSubmitted, base)
	middle := newRequest("CCIS", model.RequestStatusSubmitted, base.Add(-24*time.Hour))

	groups := BuildUnitGroups([]model.ISSPRequest{newest, older, middle}, "2024-2026")
	group, ok := groups["CCIS"]
	require.True(t, ok)
	require.Len(t, group.Requests, 3)

	// The resubmitted request heads the group despite being the oldest.
	assert.Equal(t, older.ID, group.Requests[0].ID)
	assert.Equal(t, newest.ID, group.Requests[1].ID)
	assert.Equal(t, middle.ID, group.Requests[2].ID)
	assert.Equal(t, StatusLabelResubmitted, group.Status)
	assert.Equal(t, 3, group.RequestCount)
}

func TestBuildUnitGroupsIsDeterministic(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	requests := []model.ISSPRequest{
		newRequest("CCIS", model.RequestStatusSubmitted, base),
		newRequest("CCIS", model.RequestStatusSubmitted, base), // equal timestamps keep input order
		newRequest("CAS", model.RequestStatusApproved, base),
	}

	first := BuildUnitGroups(requests, "2024-2026")
	second := BuildUnitGroups(requests, "2024-2026")

	require.Equal(t, len(first), len(second))
	for name := range first {
		require.Len(t, second[name].Requests, len(first[name].Requests))
		for i := range first[name].Requests {
			assert.Equal(t, first[name].Requests[i].ID, second[name].Requests[i].ID)
		}
	}
}

func TestLastUpdatedPrefersRevisedAt(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	revised := base.Add(6 * time.Hour)

	req := newRequest("CCIS", model.RequestStatusResubmitted, base)
	req.RevisedAt = &revised
	assert.Equal(t, revised, LastUpdated(&req))

	req.RevisedAt = nil
	assert.Equal(t, base, LastUpdated(&req))

	req.UpdatedAt = time.Time{}
	assert.Equal(t, req.CreatedAt, LastUpdated(&req))
}

func TestDeriveStatus(t *testing.T) {
	resubmitted := model.RequestStatusResubmitted

	tests := []struct {
		name string
		req  *model.ISSPRequest
		want string
	}{
		{"nil request", nil, StatusLabelComplete},
		{"submitted", &model.ISSPRequest{Status: model.RequestStatusSubmitted}, StatusLabelSubmitted},
		{"approved", &model.ISSPRequest{Status: model.RequestStatusApproved}, StatusLabelApproved},
		{"rejected", &model.ISSPRequest{Status: model.RequestStatusRejected}, StatusLabelRejected},
		{"resubmitted by status", &model.ISSPRequest{Status: model.RequestStatusResubmitted}, StatusLabelResubmitted},
		{"resubmitted by revision mirror", &model.ISSPRequest{Status: model.RequestStatusSubmitted, RevisionStatus: &resubmitted}, StatusLabelResubmitted},
		{"unknown status is capitalized", &model.ISSPRequest{Status: "archived"}, "Archived"},
		{"empty status stays empty", &model.ISSPRequest{Status: ""}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.req))
		})
	}
}

func TestFilterUnitGroupsQueryAndStatus(t *testing.T) {
	groups := map[string]model.UnitGroup{
		"CCIS": {UnitName: "CCIS", Campus: "Main", Status: StatusLabelSubmitted},
		"CAS":  {UnitName: "CAS", Campus: "North", Status: StatusLabelComplete},
		"CBA":  {UnitName: "CBA", Campus: "Main", Status: StatusLabelSubmitted},
	}

	// Case-insensitive substring match on unit name or campus.
	page := FilterUnitGroups(groups, UnitGroupFilter{Query: "main", Page: 1})
	require.Equal(t, 2, page.Total)
	assert.Equal(t, "CBA", page.Groups[0].UnitName) // alphabetical
	assert.Equal(t, "CCIS", page.Groups[1].UnitName)

	// Status filter matches the derived label exactly.
	page = FilterUnitGroups(groups, UnitGroupFilter{Status: StatusLabelComplete, Page: 1})
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "CAS", page.Groups[0].UnitName)

	// "all" and empty disable the status filter.
	assert.Equal(t, 3, FilterUnitGroups(groups, UnitGroupFilter{Status: StatusFilterAll, Page: 1}).Total)
	assert.Equal(t, 3, FilterUnitGroups(groups, UnitGroupFilter{Page: 1}).Total)

	// Summary counts run over all groups, not the filtered subset.
	page = FilterUnitGroups(groups, UnitGroupFilter{Query: "CCIS", Page: 1})
	assert.Equal(t, 3, page.Summary.TotalUnits)
	assert.Equal(t, 1, page.Summary.Complete)
	assert.Equal(t, 0, page.Summary.Pending)
}

func TestFilterUnitGroupsPagination(t *testing.T) {
	groups := make(map[string]model.UnitGroup, 45)
	for i := 0; i < 45; i++ {
		name := fmt.Sprintf("Unit %02d", i)
		groups[name] = model.UnitGroup{UnitName: name, Status: StatusLabelSubmitted}
	}

	first := FilterUnitGroups(groups, UnitGroupFilter{Page: 1})
	assert.Len(t, first.Groups, UnitGroupPageSize)
	assert.Equal(t, 45, first.Total)
	assert.Equal(t, 3, first.TotalPages)

	last := FilterUnitGroups(groups, UnitGroupFilter{Page: 3})
	assert.Len(t, last.Groups, 5)

	// Pages past the end return an empty slice, never an error.
	beyond := FilterUnitGroups(groups, UnitGroupFilter{Page: 9})
	assert.Empty(t, beyond.Groups)
	assert.Equal(t, 9, beyond.Page)

	// Page zero clamps to one.
	clamped := FilterUnitGroups(groups, UnitGroupFilter{Page: 0})
	assert.Equal(t, 1, clamped.Page)
	assert.Len(t, clamped.Groups, UnitGroupPageSize)
}

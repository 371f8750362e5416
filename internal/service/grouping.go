package service

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"issp/internal/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Derived display labels for a unit's submission status.
const (
	StatusLabelResubmitted = "Resubmitted"
	StatusLabelSubmitted   = "Submitted"
	StatusLabelApproved    = "Approved"
	StatusLabelRejected    = "Rejected"
	StatusLabelComplete    = "Complete"
	StatusLabelPending     = "Pending" // filterable but never emitted by DeriveStatus
)

// StatusFilterAll disables status filtering.
const StatusFilterAll = "all"

// UnitGroupPageSize is the fixed page size of the submission-status table.
const UnitGroupPageSize = 20

// UnknownUnitName is assigned when neither the request nor its submitting
// user carries a unit name.
const UnknownUnitName = "Unknown Unit"

// UnitNameSource identifies which fallback supplied a request's unit name.
type UnitNameSource string

const (
	UnitSourceRequestField UnitNameSource = "requestField"
	UnitSourceUserField    UnitNameSource = "userField"
	UnitSourceUnknown      UnitNameSource = "unknown"
)

// ResolveUnitName resolves a request's unit name through the documented
// fallback chain: the request's own unit field when set (even if blank),
// else the submitting user's unit, else UnknownUnitName. The returned
// source tells which branch fired.
func ResolveUnitName(req *model.ISSPRequest) (string, UnitNameSource) {
	if req.Unit != nil {
		return *req.Unit, UnitSourceRequestField
	}
	if req.User != nil && req.User.Unit != "" {
		return req.User.Unit, UnitSourceUserField
	}
	return UnknownUnitName, UnitSourceUnknown
}

// IsResubmitted reports whether a request is flagged as a resubmission,
// either through its status or through the revision-status mirror.
func IsResubmitted(req *model.ISSPRequest) bool {
	if req.Status == model.RequestStatusResubmitted {
		return true
	}
	return req.RevisionStatus != nil && *req.RevisionStatus == model.RequestStatusResubmitted
}

// EffectiveTimestamp is the sort timestamp of a request: updatedAt when
// set, else createdAt.
func EffectiveTimestamp(req *model.ISSPRequest) time.Time {
	if !req.UpdatedAt.IsZero() {
		return req.UpdatedAt
	}
	return req.CreatedAt
}

// LastUpdated is the display timestamp of a request: revisedAt when set,
// else updatedAt, else createdAt.
func LastUpdated(req *model.ISSPRequest) time.Time {
	if req.RevisedAt != nil && !req.RevisedAt.IsZero() {
		return *req.RevisedAt
	}
	return EffectiveTimestamp(req)
}

// DeriveStatus maps a unit group's head request to its display label.
// Total: unknown statuses fall back to a capitalized copy of the raw
// value instead of an error. A nil head yields "Complete"; groups are
// never built without a head request, so that branch is suspected dead
// and kept for callers that pass a missing group through.
func DeriveStatus(latest *model.ISSPRequest) string {
	if latest == nil {
		return StatusLabelComplete
	}
	if IsResubmitted(latest) {
		return StatusLabelResubmitted
	}
	switch latest.Status {
	case model.RequestStatusSubmitted:
		return StatusLabelSubmitted
	case model.RequestStatusApproved:
		return StatusLabelApproved
	case model.RequestStatusRejected:
		return StatusLabelRejected
	}
	return capitalize(latest.Status)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// BuildUnitGroups groups the flat request list by resolved unit name for
// one year cycle. Requests whose resolved unit name is blank are excluded
// entirely; units without a qualifying request do not appear (no empty
// groups). Pure: identical input yields identical output, including the
// order of each group's request slice.
func BuildUnitGroups(requests []model.ISSPRequest, yearCycle string) map[string]model.UnitGroup {
	buckets := make(map[string][]model.ISSPRequest)
	for i := range requests {
		name, _ := ResolveUnitName(&requests[i])
		if strings.TrimSpace(name) == "" {
			continue
		}
		if requests[i].YearCycle != yearCycle {
			continue
		}
		buckets[name] = append(buckets[name], requests[i])
	}

	groups := make(map[string]model.UnitGroup, len(buckets))
	for name, reqs := range buckets {
		// Resubmitted requests sort before all others; within the same
		// class, newest first. Stable so equal timestamps keep input order.
		sort.SliceStable(reqs, func(i, j int) bool {
			ri, rj := IsResubmitted(&reqs[i]), IsResubmitted(&reqs[j])
			if ri != rj {
				return ri
			}
			return EffectiveTimestamp(&reqs[i]).After(EffectiveTimestamp(&reqs[j]))
		})

		latest := &reqs[0]
		campus := ""
		if latest.User != nil {
			campus = latest.User.Campus
		}
		groups[name] = model.UnitGroup{
			UnitName:     name,
			Campus:       campus,
			Requests:     reqs,
			RequestCount: len(reqs),
			LastUpdated:  LastUpdated(latest),
			Status:       DeriveStatus(latest),
		}
	}
	return groups
}

// UnitGroupFilter narrows and pages the unit-group listing. Clients reset
// Page to 1 whenever Query or Status changes.
type UnitGroupFilter struct {
	Query  string
	Status string // derived label to match exactly; "all" or empty disables
	Page   int    // 1-based
}

// UnitGroupSummary carries the coarse header counts of the listing.
type UnitGroupSummary struct {
	TotalUnits int `json:"total_units"`
	Complete   int `json:"complete"`
	Pending    int `json:"pending"` // always 0: no derivation path emits "Pending"
}

// UnitGroupPage is one page of filtered unit groups.
type UnitGroupPage struct {
	Groups     []model.UnitGroup `json:"groups"`
	Total      int               `json:"total"` // groups matching the filter
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
	Summary    UnitGroupSummary  `json:"summary"`
}

// FilterUnitGroups orders groups alphabetically by unit name (locale-aware),
// applies the free-text and status filters, and pages at the fixed size.
// The text filter is a case-insensitive substring match against unit name
// or campus; a trimmed-empty query matches everything. Summary counts are
// computed over all groups, not the filtered subset.
func FilterUnitGroups(groups map[string]model.UnitGroup, filter UnitGroupFilter) UnitGroupPage {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	collate.New(language.English).SortStrings(names)

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]model.UnitGroup, 0, len(names))
	for _, name := range names {
		group := groups[name]
		if query != "" &&
			!strings.Contains(strings.ToLower(group.UnitName), query) &&
			!strings.Contains(strings.ToLower(group.Campus), query) {
			continue
		}
		if filter.Status != "" && filter.Status != StatusFilterAll && group.Status != filter.Status {
			continue
		}
		matched = append(matched, group)
	}

	summary := UnitGroupSummary{TotalUnits: len(groups)}
	for _, group := range groups {
		if group.Status == StatusLabelComplete {
			summary.Complete++
		}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	totalPages := (len(matched) + UnitGroupPageSize - 1) / UnitGroupPageSize

	start := (page - 1) * UnitGroupPageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + UnitGroupPageSize
	if end > len(matched) {
		end = len(matched)
	}

	return UnitGroupPage{
		Groups:     matched[start:end],
		Total:      len(matched),
		Page:       page,
		PageSize:   UnitGroupPageSize,
		TotalPages: totalPages,
		Summary:    summary,
	}
}

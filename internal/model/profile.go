package model

import (
	"time"

	"github.com/google/uuid"
)

// Profile page labels, in wizard order.
const (
	PageOrgProfile        = "A"
	PageISStrategy        = "B"
	PageResourceReqs      = "C"
	PageICTProjects       = "D"
	PageInvestmentProgram = "E"
)

// PageSequence is the wizard order of the profile editor pages.
var PageSequence = []string{
	PageOrgProfile,
	PageISStrategy,
	PageResourceReqs,
	PageICTProjects,
	PageInvestmentProgram,
}

// Fixed row counts for the table-row array fields. Each is padded or
// truncated to exactly this length on every load.
const (
	OrgUnitRows            = 1
	StrategicConcernRows   = 3
	ResourceDeploymentRows = 10
	CostBreakdownRows      = 15
)

// ProfileSection is one page of a unit's multi-page ISSP profile form.
// Field values, including table-row arrays and data-URL diagram uploads,
// are stored as a single JSON document.
type ProfileSection struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UnitName  string    `gorm:"type:varchar(255);not null;index:idx_profile_section,unique" json:"unit_name"`
	YearCycle string    `gorm:"type:varchar(9);not null;index:idx_profile_section,unique" json:"year_cycle"`
	Page      string    `gorm:"type:varchar(1);not null;index:idx_profile_section,unique" json:"page"`
	Fields    string    `gorm:"type:jsonb;not null;default:'{}'" json:"fields"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

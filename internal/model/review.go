package model

import (
	"time"

	"github.com/google/uuid"
)

// Presidential review status enum constants
const (
	PresidentialPending  = "PENDING"
	PresidentialEndorsed = "ENDORSED"
	PresidentialReturned = "RETURNED"
)

// DICT approval status enum constants
const (
	DICTPending     = "PENDING"
	DICTSubmitted   = "SUBMITTED"
	DICTApproved    = "APPROVED"
	DICTDisapproved = "DISAPPROVED"
)

// ReviewStatus tracks one unit's review lifecycle for a year cycle:
// internal review completion, presidential endorsement and the external
// DICT approval status. DICT's own process happens outside this system;
// only its outcome and approved document are recorded here.
type ReviewStatus struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UnitName           string     `gorm:"type:varchar(255);not null;index:idx_review_unit_cycle,unique" json:"unit_name"`
	YearCycle          string     `gorm:"type:varchar(9);not null;index:idx_review_unit_cycle,unique" json:"year_cycle"`
	PresidentialStatus string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"presidential_status"`
	DICTStatus         string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"dict_status"`
	DICTDocumentPath   string     `gorm:"type:varchar(512)" json:"dict_document_path"` // uploaded DICT-approved document
	Completed          bool       `gorm:"not null;default:false" json:"completed"`     // admin review completed
	CompletedAt        *time.Time `json:"completed_at"`
	UpdatedByID        *uuid.UUID `gorm:"type:uuid" json:"updated_by_id"`
	UpdatedBy          *User      `gorm:"foreignKey:UpdatedByID" json:"updated_by,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

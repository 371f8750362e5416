package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request status enum constants
const (
	RequestStatusDraft       = "draft"
	RequestStatusSubmitted   = "submitted"
	RequestStatusResubmitted = "resubmitted"
	RequestStatusApproved    = "approved"
	RequestStatusRejected    = "rejected"
)

// Line-item approval status enum constants
const (
	ItemStatusPending     = "pending"
	ItemStatusApproved    = "approved"
	ItemStatusDisapproved = "disapproved"
)

// Line-item price range enum constants
const (
	ItemRangeLow  = "low"
	ItemRangeMid  = "mid"
	ItemRangeHigh = "high"
)

// ISSPRequest is one unit's plan submission for a three-year cycle.
// A unit may hold several requests per cycle when resubmissions occur;
// the grouping engine picks the relevant one for display.
type ISSPRequest struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Unit           *string    `gorm:"type:varchar(255);index" json:"unit"` // explicit override; nil falls back to the submitting user's unit
	YearCycle      string     `gorm:"type:varchar(9);not null;index" json:"year_cycle"` // "STARTYEAR-ENDYEAR", e.g. "2024-2026"
	Status         string     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	RevisionStatus *string    `gorm:"type:varchar(20)" json:"revision_status"` // mirrors status for resubmission flagging
	UserID         *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User           *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Items          []LineItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	RevisedAt      *time.Time `json:"revised_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// LineItem is a single requested resource/expenditure entry, individually approvable.
type LineItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	Name           string          `gorm:"type:varchar(255);not null" json:"name"`
	ApprovalStatus string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"approval_status"`
	Price          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"price"`
	Quantity       int             `gorm:"not null;default:0" json:"quantity"`
	QuantityByYear string          `gorm:"type:jsonb" json:"quantity_by_year"` // JSON map year-string -> quantity
	Specification  string          `gorm:"type:text" json:"specification"`
	Purpose        string          `gorm:"type:text" json:"purpose"`
	Range          string          `gorm:"type:varchar(10)" json:"range"` // low, mid, high
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// YearQuantities decodes QuantityByYear into a year -> quantity map.
// Malformed JSON or non-numeric values coerce to an empty map / zero,
// never an error.
func (li *LineItem) YearQuantities() map[string]int {
	out := make(map[string]int)
	if li.QuantityByYear == "" {
		return out
	}
	var raw map[string]any
	if err := json.Unmarshal([]byte(li.QuantityByYear), &raw); err != nil {
		return out
	}
	for year, qty := range raw {
		switch v := qty.(type) {
		case float64:
			out[year] = int(v)
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				out[year] = n
			}
		}
	}
	return out
}

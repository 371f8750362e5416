package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification kind enum constants
const (
	NotifyItemApproved    = "ITEM_APPROVED"
	NotifyItemDisapproved = "ITEM_DISAPPROVED"
	NotifyRequestStatus   = "REQUEST_STATUS"
	NotifyReviewComplete  = "REVIEW_COMPLETE"
)

// Notification is a per-user message about review activity. Clients poll
// the list endpoint on a fixed interval; connected websocket clients also
// receive a live push when one is created.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // nil targets every coordinator of the unit
	UnitName  string     `gorm:"type:varchar(255);index" json:"unit_name"`
	Kind      string     `gorm:"type:varchar(30);not null;index" json:"kind"`
	Title     string     `gorm:"type:varchar(255);not null" json:"title"`
	Message   string     `gorm:"type:text" json:"message"`
	Read      bool       `gorm:"not null;default:false;index" json:"read"`
	CreatedAt time.Time  `gorm:"index" json:"created_at"`
}

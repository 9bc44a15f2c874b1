package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ChatRequestPending  = "pending"
	ChatRequestApproved = "approved"
	ChatRequestRejected = "rejected"
)

// ChatRequest is the approval record gating a farmer's ability to message an
// expert. Exactly one row exists per (farmer, expert) pair; re-requesting
// updates the farmer's note but never touches status.
type ChatRequest struct {
	gorm.Model
	FarmerID   uint       `json:"farmerID" gorm:"not null;uniqueIndex:idx_chat_requests_pair"`
	Farmer     User       `json:"farmer" gorm:"foreignKey:FarmerID"`
	ExpertID   uint       `json:"expertID" gorm:"not null;uniqueIndex:idx_chat_requests_pair"`
	Expert     User       `json:"expert" gorm:"foreignKey:ExpertID"`
	Status     string     `json:"status" gorm:"type:varchar(16);default:pending;index"`
	FarmerNote string     `json:"farmerNote" gorm:"size:500"`
	ExpertNote string     `json:"expertNote" gorm:"size:500"`
	ApprovedAt *time.Time `json:"approvedAt"`
	RejectedAt *time.Time `json:"rejectedAt"`
}

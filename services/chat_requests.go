package services

import (
	"errors"
	"time"
	"unicode/utf8"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxNoteLen = 500

// ChatRequestService owns the approval ledger: one singleton record per
// (farmer, expert) pair whose status gates the farmer's ability to message
// that expert.
type ChatRequestService struct{}

func NewChatRequestService() *ChatRequestService {
	return &ChatRequestService{}
}

// Request creates the pair's record with status pending, or, when the record
// already exists, refreshes only the farmer's note. Status is deliberately
// untouched on re-request: a rejected request stays rejected until the expert
// explicitly approves again.
func (s *ChatRequestService) Request(farmerID, expertID uint, note string) (*models.ChatRequest, error) {
	if utf8.RuneCountInString(note) > maxNoteLen {
		return nil, ErrInvalidArgument
	}

	var expert models.User
	if err := storage.DB.First(&expert, expertID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if expert.Role != "expert" {
		return nil, ErrNotFound
	}

	request := models.ChatRequest{
		FarmerID:   farmerID,
		ExpertID:   expertID,
		Status:     models.ChatRequestPending,
		FarmerNote: note,
	}
	err := storage.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "farmer_id"}, {Name: "expert_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"farmer_note": note,
			"updated_at":  time.Now(),
		}),
	}).Create(&request).Error
	if err != nil {
		return nil, err
	}

	var current models.ChatRequest
	err = storage.DB.Preload("Farmer").Preload("Expert").
		Where("farmer_id = ? AND expert_id = ?", farmerID, expertID).
		First(&current).Error
	if err != nil {
		return nil, err
	}
	return &current, nil
}

// Approve sets the record to approved. Only the expert named on the record may
// act; re-approving simply refreshes the note and timestamp.
func (s *ChatRequestService) Approve(requestID, approverID uint, note string) (*models.ChatRequest, error) {
	return s.decide(requestID, approverID, note, models.ChatRequestApproved)
}

// Reject sets the record to rejected. A later reject of a previously approved
// pair revokes the farmer's send ability, since the gate reads current status.
func (s *ChatRequestService) Reject(requestID, approverID uint, note string) (*models.ChatRequest, error) {
	return s.decide(requestID, approverID, note, models.ChatRequestRejected)
}

func (s *ChatRequestService) decide(requestID, approverID uint, note, status string) (*models.ChatRequest, error) {
	if utf8.RuneCountInString(note) > maxNoteLen {
		return nil, ErrInvalidArgument
	}

	var request models.ChatRequest
	if err := storage.DB.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if request.ExpertID != approverID {
		return nil, ErrForbidden
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      status,
		"expert_note": note,
	}
	if status == models.ChatRequestApproved {
		updates["approved_at"] = now
	} else {
		updates["rejected_at"] = now
	}
	if err := storage.DB.Model(&request).Updates(updates).Error; err != nil {
		return nil, err
	}

	var current models.ChatRequest
	if err := storage.DB.Preload("Farmer").Preload("Expert").First(&current, requestID).Error; err != nil {
		return nil, err
	}
	return &current, nil
}

// ListPendingForExpert returns the expert's open requests, newest activity first.
func (s *ChatRequestService) ListPendingForExpert(expertID uint) ([]models.ChatRequest, error) {
	var requests []models.ChatRequest
	err := storage.DB.Preload("Farmer").
		Where("expert_id = ? AND status = ?", expertID, models.ChatRequestPending).
		Order("updated_at DESC").
		Find(&requests).Error
	return requests, err
}

// ListMineForFarmer returns every request the farmer has made, newest activity first.
func (s *ChatRequestService) ListMineForFarmer(farmerID uint) ([]models.ChatRequest, error) {
	var requests []models.ChatRequest
	err := storage.DB.Preload("Expert").
		Where("farmer_id = ?", farmerID).
		Order("updated_at DESC").
		Find(&requests).Error
	return requests, err
}

// IsApproved is the predicate the access gate depends on.
func (s *ChatRequestService) IsApproved(farmerID, expertID uint) (bool, error) {
	var count int64
	err := storage.DB.Model(&models.ChatRequest{}).
		Where("farmer_id = ? AND expert_id = ? AND status = ?", farmerID, expertID, models.ChatRequestApproved).
		Count(&count).Error
	return count > 0, err
}

// ApprovedPeers returns the counterpart emails the caller may freely message:
// for a farmer the experts who approved them, for an expert the farmers they
// approved.
func (s *ChatRequestService) ApprovedPeers(userID uint, role string) ([]string, error) {
	var requests []models.ChatRequest
	q := storage.DB.Where("status = ?", models.ChatRequestApproved)
	switch role {
	case "farmer":
		q = q.Preload("Expert").Where("farmer_id = ?", userID)
	case "expert":
		q = q.Preload("Farmer").Where("expert_id = ?", userID)
	default:
		return []string{}, nil
	}
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(requests))
	for _, r := range requests {
		if role == "farmer" {
			emails = append(emails, r.Expert.Email)
		} else {
			emails = append(emails, r.Farmer.Email)
		}
	}
	return emails, nil
}

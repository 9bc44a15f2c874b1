package services

import (
	"testing"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"
)

func TestRequestKeepsSingletonPerPair(t *testing.T) {
	setupTestDB(t)
	svc := NewChatRequestService()
	expert := createTestUser(t, "expert@example.com", "expert")
	farmerID := createTestUser(t, "farmer@example.com", "farmer").ID

	first, err := svc.Request(farmerID, expert.ID, "first note")
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	second, err := svc.Request(farmerID, expert.ID, "second note")
	if err != nil {
		t.Fatalf("repeat request: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("repeat request created a new row: %d vs %d", first.ID, second.ID)
	}
	if second.FarmerNote != "second note" {
		t.Errorf("note not refreshed: %q", second.FarmerNote)
	}
	if second.Status != models.ChatRequestPending {
		t.Errorf("repeat request changed status to %q", second.Status)
	}

	var count int64
	storage.DB.Model(&models.ChatRequest{}).Count(&count)
	if count != 1 {
		t.Errorf("expected one ledger row, got %d", count)
	}
}

func TestRejectAfterApproveRevokes(t *testing.T) {
	setupTestDB(t)
	svc := NewChatRequestService()
	expert := createTestUser(t, "expert@example.com", "expert")
	farmerID := createTestUser(t, "farmer@example.com", "farmer").ID

	request, err := svc.Request(farmerID, expert.ID, "help with soil")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := svc.Approve(request.ID, expert.ID, "sure"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if ok, _ := svc.IsApproved(farmerID, expert.ID); !ok {
		t.Fatal("pair should be approved")
	}

	if _, err := svc.Reject(request.ID, expert.ID, "too busy now"); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if ok, _ := svc.IsApproved(farmerID, expert.ID); ok {
		t.Error("rejecting must revoke the approval")
	}

	// A re-request keeps the singleton and does not resurrect the approval.
	again, err := svc.Request(farmerID, expert.ID, "please reconsider")
	if err != nil {
		t.Fatalf("re-request: %v", err)
	}
	if again.ID != request.ID {
		t.Errorf("re-request created a new row: %d vs %d", again.ID, request.ID)
	}
	if again.Status != models.ChatRequestRejected {
		t.Errorf("re-request changed status to %q", again.Status)
	}
}

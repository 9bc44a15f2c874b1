package services

import (
	"errors"
	"testing"
)

type fakeChecker struct {
	approved map[[2]uint]bool
	err      error
}

func (f *fakeChecker) IsApproved(farmerID, expertID uint) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.approved[[2]uint{farmerID, expertID}], nil
}

func TestCanSendRolePairs(t *testing.T) {
	checker := &fakeChecker{approved: map[[2]uint]bool{}}

	cases := []struct {
		name          string
		senderRole    string
		recipientRole string
		want          Decision
	}{
		{"farmer to unapproved expert", "farmer", "expert", RequiresApproval},
		{"expert to farmer", "expert", "farmer", Allowed},
		{"farmer to farmer", "farmer", "farmer", Allowed},
		{"admin to expert", "admin", "expert", Allowed},
		{"expert to expert", "expert", "expert", Allowed},
	}
	for _, tc := range cases {
		got, err := CanSend(checker, tc.senderRole, 1, tc.recipientRole, 2)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCanSendApprovedPair(t *testing.T) {
	checker := &fakeChecker{approved: map[[2]uint]bool{{7, 9}: true}}

	got, err := CanSend(checker, "farmer", 7, "expert", 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Allowed {
		t.Errorf("approved farmer->expert: got %v, want Allowed", got)
	}

	// Approval is directional and pair-specific.
	got, _ = CanSend(checker, "farmer", 7, "expert", 10)
	if got != RequiresApproval {
		t.Errorf("different expert: got %v, want RequiresApproval", got)
	}
	got, _ = CanSend(checker, "farmer", 9, "expert", 7)
	if got != RequiresApproval {
		t.Errorf("reversed pair: got %v, want RequiresApproval", got)
	}
}

func TestCanSendCheckerError(t *testing.T) {
	checker := &fakeChecker{err: errors.New("db down")}

	got, err := CanSend(checker, "farmer", 1, "expert", 2)
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if got != RequiresApproval {
		t.Errorf("on error: got %v, want RequiresApproval (fail closed)", got)
	}

	// Non-gated pairings never consult the checker, so its failure is invisible.
	got, err = CanSend(checker, "expert", 2, "farmer", 1)
	if err != nil {
		t.Fatalf("expert->farmer should not consult checker: %v", err)
	}
	if got != Allowed {
		t.Errorf("expert->farmer: got %v, want Allowed", got)
	}
}

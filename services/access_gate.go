package services

// Decision is the outcome of the access gate for a prospective send.
type Decision int

const (
	Allowed Decision = iota
	RequiresApproval
)

// ApprovalChecker answers whether a farmer has an approved chat request for an
// expert. ChatRequestService implements it against the database; tests swap in
// a fake.
type ApprovalChecker interface {
	IsApproved(farmerID, expertID uint) (bool, error)
}

// CanSend is the single access-control decision for creating a message. Both
// the REST send handler and the websocket send_message handler must call this
// exact function; the rule lives nowhere else.
//
// Farmers may only message experts who have approved their chat request. Every
// other role pairing (expert to farmer, admin to anyone, expert to expert) is
// allowed unconditionally.
func CanSend(checker ApprovalChecker, senderRole string, senderID uint, recipientRole string, recipientID uint) (Decision, error) {
	if senderRole != "farmer" || recipientRole != "expert" {
		return Allowed, nil
	}

	approved, err := checker.IsApproved(senderID, recipientID)
	if err != nil {
		return RequiresApproval, err
	}
	if approved {
		return Allowed, nil
	}
	return RequiresApproval, nil
}

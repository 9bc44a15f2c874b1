package services

import (
	"strings"
	"testing"
	"time"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"
)

func TestValidateMessageInput(t *testing.T) {
	cases := []struct {
		name        string
		text        string
		attachments int
		wantErr     bool
	}{
		{"plain text", "what fertilizer for rice?", 0, false},
		{"empty with attachment", "", 1, false},
		{"empty, no attachments", "", 0, true},
		{"whitespace only, no attachments", "   \n\t", 0, true},
		{"at the cap", strings.Repeat("a", MaxMessageTextLen), 0, false},
		{"over the cap", strings.Repeat("a", MaxMessageTextLen+1), 0, true},
		{"over the cap with attachments", strings.Repeat("a", MaxMessageTextLen+1), 2, true},
		// The cap counts runes, so multibyte text under 2000 characters is
		// fine even though it is several times that in bytes.
		{"multibyte under the cap", strings.Repeat("റ", 1500), 0, false},
		{"multibyte at the cap", strings.Repeat("റ", MaxMessageTextLen), 0, false},
		{"multibyte over the cap", strings.Repeat("റ", MaxMessageTextLen+1), 0, true},
	}
	for _, tc := range cases {
		err := ValidateMessageInput(tc.text, tc.attachments)
		if tc.wantErr && err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("hello", 0); got != "hello" {
		t.Errorf("text preview: got %q", got)
	}
	if got := Preview("hello", 3); got != "hello" {
		t.Errorf("text wins over attachments: got %q", got)
	}
	if got := Preview("", 2); got != "[2 attachment(s)]" {
		t.Errorf("attachment preview: got %q", got)
	}
}

func seedConversation(t *testing.T) (*ConversationService, *MessageService, *models.Conversation, *models.User, *models.User) {
	t.Helper()
	conversations := NewConversationService()
	messages := NewMessageService(conversations)
	farmer := createTestUser(t, "farmer@example.com", "farmer")
	expert := createTestUser(t, "expert@example.com", "expert")
	conversation, err := conversations.Resolve(farmer, expert)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	return conversations, messages, conversation, farmer, expert
}

func TestMarkReadIsIdempotent(t *testing.T) {
	setupTestDB(t)
	_, messages, conversation, farmer, expert := seedConversation(t)

	for i := 0; i < 3; i++ {
		if _, err := messages.Append(conversation, farmer, expert, "question", nil); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	// A message the reader sent must never be stamped by their own read.
	outbound, err := messages.Append(conversation, expert, farmer, "answer", nil)
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	firstAt := time.Now()
	bySender, err := messages.MarkRead(conversation.ID, expert.ID, firstAt)
	if err != nil {
		t.Fatalf("first markRead: %v", err)
	}
	if len(bySender[farmer.ID]) != 3 {
		t.Fatalf("expected 3 ids for sender %d, got %v", farmer.ID, bySender)
	}

	var stamped []models.Message
	err = storage.DB.Where("conversation_id = ? AND to_user_id = ?", conversation.ID, expert.ID).
		Find(&stamped).Error
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	original := make(map[uint]time.Time, len(stamped))
	for _, m := range stamped {
		if m.ReadAt == nil {
			t.Fatalf("message %d not stamped", m.ID)
		}
		original[m.ID] = *m.ReadAt
	}

	again, err := messages.MarkRead(conversation.ID, expert.ID, firstAt.Add(time.Hour))
	if err != nil {
		t.Fatalf("second markRead: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second markRead restamped messages: %v", again)
	}

	stamped = nil
	err = storage.DB.Where("conversation_id = ? AND to_user_id = ?", conversation.ID, expert.ID).
		Find(&stamped).Error
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	for _, m := range stamped {
		if m.ReadAt == nil || !m.ReadAt.Equal(original[m.ID]) {
			t.Errorf("message %d readAt moved: %v vs %v", m.ID, m.ReadAt, original[m.ID])
		}
	}

	var reloaded models.Message
	if err := storage.DB.First(&reloaded, outbound.ID).Error; err != nil {
		t.Fatalf("reload outbound: %v", err)
	}
	if reloaded.ReadAt != nil {
		t.Errorf("reader's own message got stamped")
	}
}

func TestListPageAscendingAndStable(t *testing.T) {
	setupTestDB(t)
	_, messages, conversation, farmer, expert := seedConversation(t)

	var ids []uint
	for i := 0; i < 5; i++ {
		m, err := messages.Append(conversation, farmer, expert, "msg", nil)
		if err != nil {
			t.Fatalf("append: %v", err)
		}
		ids = append(ids, m.ID)
	}

	page, cursor, err := messages.ListPage(conversation.ID, 0, 0)
	if err != nil {
		t.Fatalf("listPage: %v", err)
	}
	if len(page) != 5 {
		t.Fatalf("expected 5 messages, got %d", len(page))
	}
	for i := range page {
		if page[i].ID != ids[i] {
			t.Fatalf("page not ascending: got %d at %d, want %d", page[i].ID, i, ids[i])
		}
	}
	if cursor != ids[0] {
		t.Errorf("nextCursor = %d, want oldest id %d", cursor, ids[0])
	}

	// Re-running the same query returns the same page.
	repeat, _, err := messages.ListPage(conversation.ID, 0, 0)
	if err != nil {
		t.Fatalf("repeat listPage: %v", err)
	}
	for i := range repeat {
		if repeat[i].ID != page[i].ID {
			t.Fatalf("repeat page diverged at %d", i)
		}
	}

	// Paging below a cursor returns the strictly older window, still ascending.
	older, _, err := messages.ListPage(conversation.ID, ids[2], 0)
	if err != nil {
		t.Fatalf("cursor listPage: %v", err)
	}
	if len(older) != 2 || older[0].ID != ids[0] || older[1].ID != ids[1] {
		t.Errorf("cursor page = %v, want the two oldest ids", older)
	}
}

func TestAppendSurvivesSummaryFailure(t *testing.T) {
	setupTestDB(t)
	_, messages, conversation, farmer, expert := seedConversation(t)

	// Make the summary refresh fail after the insert has committed.
	if err := storage.DB.Migrator().DropTable(&models.Conversation{}); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	message, err := messages.Append(conversation, farmer, expert, "still delivered", nil)
	if err != nil {
		t.Fatalf("append reported failure for a persisted message: %v", err)
	}
	if message == nil || message.ID == 0 {
		t.Fatalf("append returned no stored message")
	}

	var count int64
	storage.DB.Model(&models.Message{}).Where("id = ?", message.ID).Count(&count)
	if count != 1 {
		t.Errorf("message row missing after append")
	}
}

package services

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"
	"github.com/Nandhana895/Agri-backend-sub000/utils"
)

// NotificationService handles push notification delivery for recipients with
// no live connection. Pushes are best effort; a failure never fails the send
// that triggered it.
type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// NotificationData represents the data payload for notifications
type NotificationData struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversationId,omitempty"`
	SenderID       string `json:"senderId,omitempty"`
	Screen         string `json:"screen"`
	Params         string `json:"params"`
}

func (ns *NotificationService) getUserPushTokens(userID uint) ([]string, error) {
	var user models.User
	if err := storage.DB.First(&user, userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %v", err)
	}

	if user.AllowsNotifications == nil || !*user.AllowsNotifications || user.PushTokens == nil {
		return nil, fmt.Errorf("user has notifications disabled or no tokens")
	}

	var tokens []string
	if err := json.Unmarshal(user.PushTokens, &tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal push tokens: %v", err)
	}
	return tokens, nil
}

// SendNotificationToUser sends a notification to every push token a user holds.
func (ns *NotificationService) SendNotificationToUser(userID uint, title, body string, data NotificationData) error {
	tokens, err := ns.getUserPushTokens(userID)
	if err != nil {
		return err
	}

	dataMap := map[string]string{
		"type":           data.Type,
		"conversationId": data.ConversationID,
		"senderId":       data.SenderID,
		"screen":         data.Screen,
		"params":         data.Params,
	}

	var lastError error
	for _, token := range tokens {
		if err := utils.SendNotification(token, title, body, dataMap); err != nil {
			log.Printf("Failed to send notification to token %s: %v", token, err)
			lastError = err
		}
	}
	return lastError
}

// SendMessageNotification notifies an offline recipient about a new message.
func (ns *NotificationService) SendMessageNotification(recipientID, conversationID, senderID uint, senderName, preview string) error {
	title := "New message"
	body := fmt.Sprintf("%s: %s", senderName, preview)

	params := fmt.Sprintf(`{"conversationId": %d, "senderId": %d}`, conversationID, senderID)
	data := NotificationData{
		Type:           "message_received",
		ConversationID: fmt.Sprintf("%d", conversationID),
		SenderID:       fmt.Sprintf("%d", senderID),
		Screen:         "Chat",
		Params:         params,
	}

	return ns.SendNotificationToUser(recipientID, title, body, data)
}

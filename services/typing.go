package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Nandhana895/Agri-backend-sub000/storage"
)

const typingTTL = 5 * time.Second

func typingKey(conversationID, userID uint) string {
	return fmt.Sprintf("typing:conv:%d:user:%d", conversationID, userID)
}

// SetTyping marks the user as typing in the conversation for a few seconds.
// Both the websocket typing event and the REST fallback write the same key, so
// polling clients see live typers too.
func SetTyping(ctx context.Context, conversationID, userID uint) {
	storage.Redis.Set(ctx, typingKey(conversationID, userID), "1", typingTTL)
}

// PeerTyping reports whether the given peer currently holds a typing key.
func PeerTyping(ctx context.Context, conversationID, peerID uint) bool {
	val, err := storage.Redis.Get(ctx, typingKey(conversationID, peerID)).Result()
	return err == nil && val == "1"
}

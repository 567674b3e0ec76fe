package domain

import "time"

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Text           string    `json:"message"`
	CreatedAt      time.Time `json:"createdAt"`
}

// MessageView is a message annotated with its author's profile.
type MessageView struct {
	Author UserSummary
	Text   string
}

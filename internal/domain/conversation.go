package domain

import (
	"strings"
	"time"
)

// NewConversationID is the sentinel clients send instead of a conversation id
// when the conversation should be resolved from the sender/receiver pair.
const NewConversationID = "new"

// Conversation is a two-party thread. Members keep the order they were created with.
type Conversation struct {
	ID        string    `json:"id"`
	Members   [2]string `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// Counterpart returns the member that is not userID.
func (c *Conversation) Counterpart(userID string) (string, bool) {
	for i, m := range c.Members {
		if SameID(m, userID) {
			return c.Members[1-i], true
		}
	}
	return "", false
}

// PairKey returns an order-independent key for a member pair.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + ":" + b
}

// ConversationView is a conversation joined with the profile of the other member.
type ConversationView struct {
	ConversationID string
	Counterpart    UserSummary
}

// IsNewConversation reports whether id is the "new" sentinel.
func IsNewConversation(id string) bool {
	return strings.EqualFold(strings.TrimSpace(id), NewConversationID)
}

// SameID compares ids the way the stores canonicalize them: trimmed, case-insensitive.
func SameID(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

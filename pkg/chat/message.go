package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is one conversation entry.
type Message struct {
	ID       uuid.UUID `json:"id"`
	Text     string    `json:"text"`
	FromUser bool      `json:"from_user"`

	// WalletLink is an optional Google Wallet save link attached to
	// assistant replies about passes.
	WalletLink string `json:"wallet_link,omitempty"`

	At time.Time `json:"at"`
}

// NewUserMessage builds a user-originated entry.
func NewUserMessage(text string) Message {
	return Message{ID: uuid.New(), Text: text, FromUser: true, At: time.Now()}
}

// NewAssistantMessage builds an assistant entry with an optional wallet link.
func NewAssistantMessage(text, walletLink string) Message {
	return Message{ID: uuid.New(), Text: text, WalletLink: walletLink, At: time.Now()}
}

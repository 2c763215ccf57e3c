package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/common"
)

// Content is the payload of a message: text, an image reference, or both.
// At least one of the two must be present.
type Content struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

// Validate enforces the non-empty union rule.
func (c Content) Validate() error {
	if strings.TrimSpace(c.Text) == "" && c.Image == "" {
		return fmt.Errorf("%w: message needs text or image", common.ErrValidation)
	}
	return nil
}

// Message is an immutable direct message between two users.
type Message struct {
	ID         string    `json:"_id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text,omitempty"`
	Image      string    `json:"image,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Content returns the message payload.
func (m *Message) Content() Content {
	return Content{Text: m.Text, Image: m.Image}
}

// Package domain contains core concepts of the conversation splitter.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat event fetched from a channel.
type Message struct {
	ID          uuid.UUID // unique identifier
	AuthorID    UserID
	AuthorName  string
	Content     string
	CreatedAt   time.Time
	EditedAt    *time.Time
	ReplyTo     *uuid.UUID
	Attachments []Attachment
	System      bool
}

// Attachment describes a file referenced by a message.
// Bodies are never downloaded, only metadata is kept.
type Attachment struct {
	Name        string
	ContentType string
	URL         string
}

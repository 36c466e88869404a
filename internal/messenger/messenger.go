// Package messenger describes the chat platform the bot talks to, independent
// of any concrete SDK.
package messenger

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// Event is one inbound message.
type Event struct {
	ThreadID  string
	SenderID  string
	MessageID string
	Body      string

	// Set when the message replies to another one.
	RepliedToMessageID string
	RepliedToSenderID  string
	IsReplyToBot       bool

	// Platform-provided sender name, if any.
	SenderName string
}

func (e Event) IsReply() bool {
	return e.RepliedToMessageID != ""
}

type AttachmentKind string

const (
	AttachmentVideo AttachmentKind = "video"
	AttachmentAudio AttachmentKind = "audio"
	AttachmentPhoto AttachmentKind = "photo"
)

type Attachment struct {
	Path string
	Kind AttachmentKind
}

type Outgoing struct {
	ThreadID   string
	Text       string
	ReplyTo    string
	Attachment *Attachment
	// Album holds photos shown together with Text. The returned ID is the
	// one of the text message.
	Album []Attachment
}

type UserInfo struct {
	Name          string
	FirstName     string
	AlternateName string
	Vanity        string
}

// Client is the subset of platform operations the handlers need.
type Client interface {
	// Send delivers a message and returns the platform ID of the sent message.
	Send(ctx context.Context, msg Outgoing) (string, error)
	React(ctx context.Context, threadID, messageID, emoji string) error
	Unsend(ctx context.Context, threadID, messageID string) error
	UserInfo(ctx context.Context, userID string) (UserInfo, error)
	RemoveMember(ctx context.Context, threadID, userID string, ban bool) error
	SelfID() string
	Events(ctx context.Context) (<-chan Event, error)
}

const (
	ReactionPending = "⏳"
	ReactionWaiting = "⌛"
	ReactionDone    = "✅"
	ReactionFailed  = "❌"
)

package telegram

import (
	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/muratoffalex/manobot/internal/messenger"
)

type RequestFileData = tgbotapi.RequestFileData

type MessageConfig interface {
	ToChattable() tgbotapi.Chattable
}

type TextMessage struct {
	ChatID              int64
	Text                string
	ReplyTo             int
	LinkPreviewDisabled bool
}

func NewMessage(chatID int64, text string, replyTo int) TextMessage {
	return TextMessage{
		ChatID:  chatID,
		Text:    text,
		ReplyTo: replyTo,
	}
}

func (m TextMessage) ToChattable() tgbotapi.Chattable {
	msg := tgbotapi.NewMessage(m.ChatID, m.Text)
	msg.ReplyParameters.MessageID = m.ReplyTo
	msg.LinkPreviewOptions.IsDisabled = m.LinkPreviewDisabled
	return msg
}

// FileMessage sends a local file as video, audio or photo.
type FileMessage struct {
	ChatID  int64
	Kind    messenger.AttachmentKind
	File    RequestFileData
	Caption string
	ReplyTo int
}

func NewFileMessage(chatID int64, kind messenger.AttachmentKind, path, caption string, replyTo int) FileMessage {
	return FileMessage{
		ChatID:  chatID,
		Kind:    kind,
		File:    tgbotapi.FilePath(path),
		Caption: caption,
		ReplyTo: replyTo,
	}
}

func (m FileMessage) ToChattable() tgbotapi.Chattable {
	switch m.Kind {
	case messenger.AttachmentAudio:
		msg := tgbotapi.NewAudio(m.ChatID, m.File)
		msg.Caption = m.Caption
		msg.ReplyParameters.MessageID = m.ReplyTo
		return msg
	case messenger.AttachmentPhoto:
		msg := tgbotapi.NewPhoto(m.ChatID, m.File)
		msg.Caption = m.Caption
		msg.ReplyParameters.MessageID = m.ReplyTo
		return msg
	default:
		msg := tgbotapi.NewVideo(m.ChatID, m.File)
		msg.Caption = m.Caption
		msg.ReplyParameters.MessageID = m.ReplyTo
		msg.SupportsStreaming = true
		return msg
	}
}

// maxAlbumSize is the largest media group Telegram accepts.
const maxAlbumSize = 10

// NewAlbum builds a media group of two to ten local files.
func NewAlbum(chatID int64, files []messenger.Attachment, replyTo int) tgbotapi.MediaGroupConfig {
	media := make([]tgbotapi.InputMedia, 0, len(files))
	for _, f := range files {
		if f.Kind == messenger.AttachmentVideo {
			item := tgbotapi.NewInputMediaVideo(tgbotapi.FilePath(f.Path))
			media = append(media, &item)
			continue
		}
		item := tgbotapi.NewInputMediaPhoto(tgbotapi.FilePath(f.Path))
		media = append(media, &item)
	}
	group := tgbotapi.NewMediaGroup(chatID, media)
	group.ReplyParameters.MessageID = replyTo
	return group
}

// Telegram only accepts a fixed reaction set, so the neutral reactions are
// mapped onto allowed emoji.
var reactionEmoji = map[string]string{
	messenger.ReactionPending: "👀",
	messenger.ReactionWaiting: "🤔",
	messenger.ReactionDone:    "👌",
	messenger.ReactionFailed:  "💔",
}

func telegramReaction(emoji string) string {
	if mapped, ok := reactionEmoji[emoji]; ok {
		return mapped
	}
	return emoji
}

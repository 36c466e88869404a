// Package telegram adapts the Telegram Bot API to messenger.Client.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/muratoffalex/manobot/internal/cache"
	"github.com/muratoffalex/manobot/internal/config"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
	"github.com/tidwall/gjson"
)

const (
	userCacheTTL   = 24 * time.Hour
	updatesTimeout = 60
)

var retryAfterRe = regexp.MustCompile(`retry after (\d+)`)

type BotClient struct {
	bot        *tgbotapi.BotAPI
	cfg        config.TelegramConfig
	users      cache.Cache
	maxRetries int
	logger     logger.Logger
}

// Connect authenticates the token with getMe.
func Connect(token string, httpClient *http.Client) (*tgbotapi.BotAPI, error) {
	return ConnectWithEndpoint(token, tgbotapi.APIEndpoint, httpClient)
}

func ConnectWithEndpoint(token, endpoint string, httpClient *http.Client) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("telegram auth failed: %w", err)
	}
	return bot, nil
}

func NewBotClient(
	bot *tgbotapi.BotAPI,
	cfg config.TelegramConfig,
	users cache.Cache,
	log logger.Logger,
) *BotClient {
	return &BotClient{
		bot:        bot,
		cfg:        cfg,
		users:      users,
		maxRetries: 3,
		logger:     log.WithField("component", "telegram"),
	}
}

var _ messenger.Client = (*BotClient)(nil)

func (c *BotClient) Send(ctx context.Context, out messenger.Outgoing) (string, error) {
	chatID, err := parseChatID(out.ThreadID)
	if err != nil {
		return "", err
	}
	replyTo, _ := strconv.Atoi(out.ReplyTo)

	if len(out.Album) > 0 {
		if err := c.sendAlbum(ctx, chatID, out.Album, replyTo); err != nil {
			c.logger.WithError(err).WithField("files", len(out.Album)).Warn("Failed to send album, sending text only")
		}
	}

	var msg MessageConfig
	if out.Attachment != nil {
		msg = NewFileMessage(chatID, out.Attachment.Kind, out.Attachment.Path, out.Text, replyTo)
	} else {
		msg = NewMessage(chatID, out.Text, replyTo)
	}

	sent, err := c.sendWithRetry(ctx, msg)
	if err != nil {
		return "", err
	}
	return strconv.Itoa(sent.MessageID), nil
}

// sendAlbum sends files in groups of at most maxAlbumSize. A lone file is
// sent on its own since a media group needs two.
func (c *BotClient) sendAlbum(ctx context.Context, chatID int64, files []messenger.Attachment, replyTo int) error {
	for start := 0; start < len(files); start += maxAlbumSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk := files[start:min(start+maxAlbumSize, len(files))]
		if len(chunk) == 1 {
			if _, err := c.sendWithRetry(ctx, NewFileMessage(chatID, chunk[0].Kind, chunk[0].Path, "", replyTo)); err != nil {
				return err
			}
			continue
		}
		if _, err := c.bot.SendMediaGroup(NewAlbum(chatID, chunk, replyTo)); err != nil {
			return fmt.Errorf("send media group: %w", err)
		}
	}
	return nil
}

func (c *BotClient) sendWithRetry(ctx context.Context, msg MessageConfig) (*tgbotapi.Message, error) {
	retryCount := 0
	for {
		sent, err := c.bot.Send(msg.ToChattable())
		if err == nil {
			return &sent, nil
		}
		if !strings.Contains(err.Error(), "Too Many Requests: retry after") {
			return nil, err
		}

		retryAfter := extractRetryAfter(err.Error())
		waitTime := time.Duration(retryAfter+2) * time.Second
		retryCount++
		if retryCount > c.maxRetries {
			c.logger.Error("Max retries reached for rate limited message")
			return nil, err
		}

		c.logger.WithFields(logger.Fields{
			"retry_after": retryAfter,
			"wait_time":   waitTime,
			"attempt":     retryCount,
		}).Warn("Rate limit hit, waiting before retry")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

func (c *BotClient) React(ctx context.Context, threadID, messageID, emoji string) error {
	reaction, err := json.Marshal([]map[string]string{
		{"type": "emoji", "emoji": telegramReaction(emoji)},
	})
	if err != nil {
		return err
	}
	params := tgbotapi.Params{
		"chat_id":    threadID,
		"message_id": messageID,
		"reaction":   string(reaction),
	}
	_, err = c.bot.MakeRequest("setMessageReaction", params)
	return err
}

func (c *BotClient) Unsend(ctx context.Context, threadID, messageID string) error {
	chatID, err := parseChatID(threadID)
	if err != nil {
		return err
	}
	id, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("invalid message id %q: %w", messageID, err)
	}
	_, err = c.bot.Request(tgbotapi.NewDeleteMessage(chatID, id))
	return err
}

// UserInfo answers from users seen in recent updates and falls back to
// getChat, which only works for users that have talked to the bot.
func (c *BotClient) UserInfo(ctx context.Context, userID string) (messenger.UserInfo, error) {
	if data, ok := c.users.Get(userKey(userID)); ok {
		var info messenger.UserInfo
		if err := json.Unmarshal(data, &info); err == nil {
			return info, nil
		}
	}

	resp, err := c.bot.MakeRequest("getChat", tgbotapi.Params{"chat_id": userID})
	if err != nil {
		return messenger.UserInfo{}, fmt.Errorf("%w: %s: %w", messenger.ErrUserNotFound, userID, err)
	}
	result := gjson.ParseBytes(resp.Result)
	info := userInfo(
		result.Get("first_name").String(),
		result.Get("last_name").String(),
		result.Get("username").String(),
	)
	if info.Name == "" {
		return messenger.UserInfo{}, fmt.Errorf("%w: %s", messenger.ErrUserNotFound, userID)
	}
	c.remember(userID, info)
	return info, nil
}

// RemoveMember bans the user; without ban the user is unbanned right away so
// they can rejoin, which is how Telegram models a kick.
func (c *BotClient) RemoveMember(ctx context.Context, threadID, userID string, ban bool) error {
	params := tgbotapi.Params{"chat_id": threadID, "user_id": userID}
	if _, err := c.bot.MakeRequest("banChatMember", params); err != nil {
		return err
	}
	if ban {
		return nil
	}
	params["only_if_banned"] = "true"
	_, err := c.bot.MakeRequest("unbanChatMember", params)
	return err
}

func (c *BotClient) SelfID() string {
	return strconv.FormatInt(c.bot.Self.ID, 10)
}

// Events streams messages from allowed chats until ctx is done.
func (c *BotClient) Events(ctx context.Context) (<-chan messenger.Event, error) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updatesTimeout
	updates := c.bot.GetUpdatesChan(u)

	out := make(chan messenger.Event)
	go func() {
		defer close(out)
		defer c.bot.StopReceivingUpdates()
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := c.toEvent(update)
				if !ok {
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (c *BotClient) toEvent(update tgbotapi.Update) (messenger.Event, bool) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return messenger.Event{}, false
	}
	if !c.cfg.IsChatAllowed(msg.Chat.ID) {
		c.logger.WithField("chat_id", msg.Chat.ID).Debug("Ignoring message from disallowed chat")
		return messenger.Event{}, false
	}

	senderID := strconv.FormatInt(msg.From.ID, 10)
	sender := userInfo(msg.From.FirstName, msg.From.LastName, msg.From.UserName)
	c.remember(senderID, sender)

	body := msg.Text
	if body == "" {
		body = msg.Caption
	}
	ev := messenger.Event{
		ThreadID:   strconv.FormatInt(msg.Chat.ID, 10),
		SenderID:   senderID,
		MessageID:  strconv.Itoa(msg.MessageID),
		Body:       body,
		SenderName: sender.Name,
	}
	if reply := msg.ReplyToMessage; reply != nil {
		ev.RepliedToMessageID = strconv.Itoa(reply.MessageID)
		if reply.From != nil {
			ev.RepliedToSenderID = strconv.FormatInt(reply.From.ID, 10)
			ev.IsReplyToBot = reply.From.ID == c.bot.Self.ID
			c.remember(ev.RepliedToSenderID, userInfo(reply.From.FirstName, reply.From.LastName, reply.From.UserName))
		}
	}
	return ev, true
}

func (c *BotClient) remember(userID string, info messenger.UserInfo) {
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := c.users.Set(userKey(userID), data, userCacheTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache user")
	}
}

func userInfo(firstName, lastName, userName string) messenger.UserInfo {
	name := strings.TrimSpace(firstName + " " + lastName)
	if name == "" {
		name = userName
	}
	return messenger.UserInfo{
		Name:      name,
		FirstName: firstName,
		Vanity:    userName,
	}
}

func userKey(userID string) string {
	return "tg:user:" + userID
}

func parseChatID(threadID string) (int64, error) {
	id, err := strconv.ParseInt(threadID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat id %q: %w", threadID, err)
	}
	return id, nil
}

func extractRetryAfter(errMsg string) int {
	matches := retryAfterRe.FindStringSubmatch(errMsg)
	if len(matches) > 1 {
		retryAfter, _ := strconv.Atoi(matches[1])
		return retryAfter
	}
	return 0
}

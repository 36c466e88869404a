package media

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/muratoffalex/manobot/internal/logger"
	"github.com/muratoffalex/manobot/internal/messenger"
)

// Sender delivers a captioned attachment with bounded retries and a split
// send as the last resort.
type Sender struct {
	client   messenger.Client
	attempts uint
	delay    time.Duration
	logger   logger.Logger
}

func NewSender(client messenger.Client, attempts int, delay time.Duration, log logger.Logger) *Sender {
	if attempts < 1 {
		attempts = 1
	}
	return &Sender{
		client:   client,
		attempts: uint(attempts),
		delay:    delay,
		logger:   log,
	}
}

func (s *Sender) Send(ctx context.Context, threadID, caption string, attachment messenger.Attachment) error {
	err := retry.Do(
		func() error {
			_, err := s.client.Send(ctx, messenger.Outgoing{
				ThreadID:   threadID,
				Text:       caption,
				Attachment: &attachment,
			})
			return err
		},
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.logger.WithError(err).WithFields(logger.Fields{
				"attempt":   n + 1,
				"thread_id": threadID,
			}).Warn("Send failed, retrying")
		}),
	)
	if err == nil {
		return nil
	}

	s.logger.WithError(err).WithField("thread_id", threadID).Warn("Combined send failed, sending separately")
	if _, err := s.client.Send(ctx, messenger.Outgoing{ThreadID: threadID, Text: caption}); err != nil {
		return fmt.Errorf("send caption: %w", err)
	}
	if _, err := s.client.Send(ctx, messenger.Outgoing{ThreadID: threadID, Attachment: &attachment}); err != nil {
		return fmt.Errorf("send attachment: %w", err)
	}
	return nil
}

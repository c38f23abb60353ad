package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"market-bot/internal/logging"
	"market-bot/internal/notify"
)

// UpdateSource yields incoming chat messages after offset.
type UpdateSource interface {
	Updates(ctx context.Context, offset int64, wait time.Duration) ([]notify.Update, error)
}

// pollBackoff is the pause after a failed poll.
var pollBackoff = 5 * time.Second

// Listen answers messages from chatID one at a time until ctx is cancelled.
// Messages from other chats and bot commands other than /ask are ignored.
func (b *Bot) Listen(ctx context.Context, src UpdateSource, chatID string, wait time.Duration) error {
	log := logging.WithOperation(b.logger, "listen")
	log.Info().Str("chat_id", chatID).Msg("Listening for questions")

	var offset int64
	for {
		if ctx.Err() != nil {
			return nil
		}

		updates, err := src.Updates(ctx, offset, wait)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn().Err(err).Msg("Polling updates failed")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(pollBackoff):
			}
			continue
		}

		for _, u := range updates {
			if u.UpdateID >= offset {
				offset = u.UpdateID + 1
			}
			if u.Message == nil {
				continue
			}
			if chatID != "" && strconv.FormatInt(u.Message.Chat.ID, 10) != chatID {
				log.Debug().Int64("chat", u.Message.Chat.ID).Msg("Ignoring message from another chat")
				continue
			}
			question, ok := questionText(u.Message.Text)
			if !ok {
				continue
			}
			log.Info().Int64("message_id", u.Message.MessageID).Str("question", question).Msg("Question received")
			b.Reply(ctx, question)
		}
	}
}

// questionText extracts the question from a chat message. "/ask foo" and
// "/ask@SomeBot foo" yield "foo"; any other command is not a question.
func questionText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if !strings.HasPrefix(text, "/") {
		return text, true
	}

	cmd, rest, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	if cmd != "/ask" {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	return rest, rest != ""
}

package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"topic_bot/internal/model"
)

const (
	cmdTopic  = "topic"
	cmdTopics = "topics"
)

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	callback := tgbotapi.NewCallback(cb.ID, "")
	if _, err := b.api.Send(callback); err != nil {
		b.log.Error("send callback ack", "error", err)
	}

	if cb.Message == nil || cb.Message.Chat == nil || cb.From == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	if !b.cfg.IsUserAllowed(cb.From.ID) {
		b.reply(chatID, "Access denied.")
		return
	}

	action, id, err := ParseCallbackData(cb.Data)
	if err != nil {
		return
	}

	b.log.Info("callback",
		"action", action,
		"id", id,
		"chat_id", chatID,
		"user_id", cb.From.ID,
		"username", cb.From.UserName,
	)

	switch action {
	case cmdTopic:
		t, err := b.catalog.Topic(ctx, id)
		if errors.Is(err, model.ErrNotFound) {
			b.reply(chatID, fmt.Sprintf("Topic #%d no longer exists.", id))
			return
		}
		if err != nil {
			b.log.Error("get topic", "id", id, "error", err)
			b.reply(chatID, "Something went wrong, please try again later.")
			return
		}
		b.reply(chatID, FormatAnswer(t))
	}
}

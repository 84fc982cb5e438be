package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"topic_bot/internal/catalog"
	"topic_bot/internal/model"
)

func (b *Bot) handleStart(chatID int64) {
	b.reply(chatID, `Welcome to Topic Bot!

Ask me about a programming topic and I will explain it.

Quick start:
1. Just type a question, e.g. "what is recursion?"
2. /topics — see every topic I know

Use /help for the full command reference.`)
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, `Commands:
/topics — list all known topics
/topic <name> — explain a topic by its exact name
/search <text> — find the first topic mentioned in the text

Any message that is not a command is treated as /search.`)
}

func (b *Bot) handleTopics(ctx context.Context, chatID int64) {
	topics, err := b.catalog.Topics(ctx)
	if err != nil {
		b.log.Error("list topics", "chat_id", chatID, "error", err)
		b.reply(chatID, "Something went wrong, please try again later.")
		return
	}

	msg := tgbotapi.NewMessage(chatID, FormatTopicList(topics))
	if kb, ok := topicKeyboard(topics); ok {
		msg.ReplyMarkup = kb
	}
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send topic list", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) handleTopic(ctx context.Context, chatID int64, args string) {
	name, err := ParseTopicArg(args)
	if err != nil {
		b.reply(chatID, "Usage: /topic <name>")
		return
	}

	t, err := b.catalog.Lookup(ctx, name)
	if errors.Is(err, model.ErrNotFound) {
		b.reply(chatID, fmt.Sprintf("Topic %q not found. Use /topics to see what I know.", name))
		return
	}
	if err != nil {
		b.log.Error("lookup topic", "name", name, "error", err)
		b.reply(chatID, "Something went wrong, please try again later.")
		return
	}
	b.reply(chatID, FormatAnswer(t))
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, origin catalog.Origin, text string) {
	t, err := b.catalog.Search(ctx, origin, text)
	if errors.Is(err, model.ErrNotFound) {
		b.reply(chatID, FormatNotFound())
		return
	}
	if err != nil {
		b.log.Error("search", "chat_id", chatID, "error", err)
		b.reply(chatID, "Something went wrong, please try again later.")
		return
	}
	b.reply(chatID, FormatAnswer(t))
}

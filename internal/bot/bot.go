package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"topic_bot/internal/catalog"
	"topic_bot/internal/config"
	"topic_bot/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Catalog is the subset of topic operations the bot exposes to chat users.
type Catalog interface {
	Topics(ctx context.Context) ([]model.Topic, error)
	Topic(ctx context.Context, id int64) (*model.Topic, error)
	Lookup(ctx context.Context, name string) (*model.Topic, error)
	Search(ctx context.Context, origin catalog.Origin, text string) (*model.Topic, error)
}

// Bot is the Telegram front end that answers topic questions.
type Bot struct {
	api     telegramAPI
	catalog Catalog
	cfg     *config.Config
	log     *slog.Logger
}

// New creates a Bot with the given Telegram token, catalog, and config.
func New(token string, cat Catalog, cfg *config.Config, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	return &Bot{
		api:     api,
		catalog: cat,
		cfg:     cfg,
		log:     log,
	}, nil
}

// Run starts the bot's long-polling loop, blocking until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	if !b.cfg.IsUserAllowed(msg.From.ID) {
		b.reply(msg.Chat.ID, "Access denied.")
		return
	}
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	b.handleSearch(ctx, msg.Chat.ID, originOf(msg), msg.Text)
}

// SendMessage sends a text message to the given chat.
func (b *Bot) SendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat_id", chatID, "error", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.SendMessage(chatID, text)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cmd := msg.Command()
	args := strings.TrimSpace(msg.CommandArguments())
	chatID := msg.Chat.ID

	b.log.Debug("command", "cmd", cmd, "args", args, "chat_id", chatID)

	switch cmd {
	case "start":
		b.handleStart(chatID)
	case "help":
		b.handleHelp(chatID)
	case cmdTopics:
		b.handleTopics(ctx, chatID)
	case cmdTopic:
		b.handleTopic(ctx, chatID, args)
	case "search":
		if args == "" {
			b.reply(chatID, "Usage: /search <text>")
			return
		}
		b.handleSearch(ctx, chatID, originOf(msg), args)
	default:
		b.reply(chatID, "Unknown command. Use /help for a list of commands.")
	}
}

// originOf identifies the sender of msg for the query log.
func originOf(msg *tgbotapi.Message) catalog.Origin {
	var name string
	if msg.From != nil {
		name = msg.From.UserName
		if name == "" {
			name = msg.From.FirstName
		}
	}
	return catalog.Origin{
		UserName: name,
		ChatID:   strconv.FormatInt(msg.Chat.ID, 10),
	}
}

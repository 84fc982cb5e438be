package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"topic_bot/internal/model"
)

const (
	keyboardColumns = 3
	keyboardMaxKeys = 60
)

// FormatAnswer formats a topic as a reply to a question.
func FormatAnswer(t *model.Topic) string {
	return fmt.Sprintf("%s: %s", t.Name, t.Explanation)
}

// FormatNotFound is the reply for a question that mentions no known topic.
func FormatNotFound() string {
	return "I couldn't find a topic in your message. Use /topics to see what I know."
}

// FormatTopicList formats topic names for display.
func FormatTopicList(topics []model.Topic) string {
	if len(topics) == 0 {
		return "I don't know any topics yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "I know %d topic(s):\n", len(topics))
	for _, t := range topics {
		fmt.Fprintf(&b, "\n• %s", t.Name)
	}
	return b.String()
}

// topicKeyboard builds one button per topic, keyboardColumns per row.
// Long catalogs get no keyboard.
func topicKeyboard(topics []model.Topic) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(topics) == 0 || len(topics) > keyboardMaxKeys {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, t := range topics {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(t.Name, fmt.Sprintf("%s:%d", cmdTopic, t.ID)))
		if len(row) == keyboardColumns {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

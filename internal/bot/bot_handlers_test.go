package bot

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"topic_bot/internal/catalog"
	"topic_bot/internal/config"
	"topic_bot/internal/model"
	"topic_bot/internal/storage"
)

// --- mocks ---

type sentMsg struct {
	ChatID int64
	Text   string
	Markup any
}

type mockAPI struct {
	mu      sync.Mutex
	sent    []sentMsg
	updates tgbotapi.UpdatesChannel
	stopped bool
}

func (m *mockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		m.mu.Lock()
		m.sent = append(m.sent, sentMsg{ChatID: msg.ChatID, Text: msg.Text, Markup: msg.ReplyMarkup})
		m.mu.Unlock()
	}
	return tgbotapi.Message{}, nil
}

func (m *mockAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	if m.updates == nil {
		m.updates = make(tgbotapi.UpdatesChannel)
	}
	return m.updates
}

func (m *mockAPI) StopReceivingUpdates() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *mockAPI) last() sentMsg {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return sentMsg{}
	}
	return m.sent[len(m.sent)-1]
}

func (m *mockAPI) lastText() string {
	return m.last().Text
}

func (m *mockAPI) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// --- helpers ---

func newTestBot(t *testing.T, cfg *config.Config) (*Bot, *mockAPI, *catalog.Service) {
	t.Helper()
	store, err := storage.NewSQLite(":memory:")
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := catalog.New(store, log)
	for _, in := range []model.TopicInput{
		{Name: "python", Explanation: "A programming language."},
		{Name: "git", Explanation: "A version control system."},
	} {
		if _, err := svc.Create(context.Background(), in); err != nil {
			t.Fatalf("seed %s: %v", in.Name, err)
		}
	}

	if cfg == nil {
		cfg = &config.Config{}
	}
	api := &mockAPI{}
	b := &Bot{api: api, catalog: svc, cfg: cfg, log: log}
	return b, api, svc
}

func commandMsg(chatID int64, cmd, args string) *tgbotapi.Message {
	text := "/" + cmd
	if args != "" {
		text += " " + args
	}
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: 7, UserName: "alice"},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len("/" + cmd)},
		},
	}
}

func textMsg(chatID int64, from *tgbotapi.User, text string) *tgbotapi.Message {
	return &tgbotapi.Message{From: from, Chat: &tgbotapi.Chat{ID: chatID}, Text: text}
}

func requireContains(t *testing.T, got, want string) {
	t.Helper()
	if !strings.Contains(got, want) {
		t.Errorf("reply missing %q, got:\n%s", want, got)
	}
}

func lastQuery(t *testing.T, svc *catalog.Service) model.QueryView {
	t.Helper()
	queries, err := svc.Queries(context.Background())
	if err != nil {
		t.Fatalf("queries: %v", err)
	}
	if len(queries) == 0 {
		t.Fatal("no queries logged")
	}
	return queries[0]
}

// --- handler tests ---

func TestHandleStart(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleStart(100)
	requireContains(t, api.lastText(), "Welcome to Topic Bot")
}

func TestHandleHelp(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleHelp(100)
	requireContains(t, api.lastText(), "/topics")
	requireContains(t, api.lastText(), "/search")
}

func TestHandleTopics(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	b.handleTopics(context.Background(), 100)

	got := api.last()
	if diff := cmp.Diff("I know 2 topic(s):\n\n• python\n• git", got.Text); diff != "" {
		t.Errorf("reply mismatch (-want +got):\n%s", diff)
	}
	kb, ok := got.Markup.(tgbotapi.InlineKeyboardMarkup)
	if !ok {
		t.Fatalf("reply markup = %T, want InlineKeyboardMarkup", got.Markup)
	}
	if diff := cmp.Diff(1, len(kb.InlineKeyboard)); diff != "" {
		t.Errorf("keyboard rows (-want +got):\n%s", diff)
	}
}

func TestHandleTopic(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		args string
		want string
	}{
		{name: "empty args", args: "", want: "Usage: /topic"},
		{name: "exact", args: "git", want: "git: A version control system."},
		{name: "case folded", args: "PYTHON", want: "python: A programming language."},
		{name: "unknown", args: "rust", want: `Topic "rust" not found`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, api, _ := newTestBot(t, nil)
			b.handleTopic(ctx, 100, tt.args)
			requireContains(t, api.lastText(), tt.want)
		})
	}
}

func TestHandleSearchLogsOrigin(t *testing.T) {
	ctx := context.Background()

	t.Run("match", func(t *testing.T) {
		b, api, svc := newTestBot(t, nil)
		b.handleSearch(ctx, 4242, catalog.Origin{UserName: "alice", ChatID: "4242"}, "How do I undo a Git commit?")

		if diff := cmp.Diff("git: A version control system.", api.lastText()); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
		q := lastQuery(t, svc)
		if q.UserName != "alice" || q.ChatID != "4242" || !q.Successful {
			t.Errorf("logged query = %+v", q.Query)
		}
		if diff := cmp.Diff("how do i undo a git commit?", q.QueryText); diff != "" {
			t.Errorf("query text mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("no match", func(t *testing.T) {
		b, api, svc := newTestBot(t, nil)
		b.handleSearch(ctx, 4242, catalog.Origin{UserName: "alice", ChatID: "4242"}, "tell me about haskell")

		if diff := cmp.Diff(FormatNotFound(), api.lastText()); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
		q := lastQuery(t, svc)
		if q.Successful || q.MatchedTopicID != nil {
			t.Errorf("logged query = %+v, want unsuccessful", q.Query)
		}
	})
}

func TestHandleCommand(t *testing.T) {
	ctx := context.Background()

	cmds := []struct {
		cmd      string
		args     string
		contains string
	}{
		{cmd: "start", contains: "Welcome"},
		{cmd: "help", contains: "/topic <name>"},
		{cmd: "topics", contains: "• python"},
		{cmd: "topic", args: "git", contains: "git: A version control system."},
		{cmd: "search", contains: "Usage: /search"},
		{cmd: "search", args: "is python slow", contains: "python: A programming language."},
		{cmd: "unknown_cmd", contains: "Unknown command"},
	}

	for _, tc := range cmds {
		t.Run(tc.cmd+" "+tc.args, func(t *testing.T) {
			b, api, _ := newTestBot(t, nil)
			b.handleCommand(ctx, commandMsg(100, tc.cmd, tc.args))
			requireContains(t, api.lastText(), tc.contains)
		})
	}
}

func TestHandleUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("plain text searches with username", func(t *testing.T) {
		b, api, svc := newTestBot(t, nil)
		b.handleUpdate(ctx, tgbotapi.Update{Message: textMsg(555, &tgbotapi.User{ID: 1, UserName: "bob", FirstName: "Bob"}, "python?")})

		requireContains(t, api.lastText(), "python:")
		q := lastQuery(t, svc)
		if q.UserName != "bob" || q.ChatID != "555" {
			t.Errorf("origin = %q/%q, want bob/555", q.UserName, q.ChatID)
		}
	})

	t.Run("first name when username missing", func(t *testing.T) {
		b, _, svc := newTestBot(t, nil)
		b.handleUpdate(ctx, tgbotapi.Update{Message: textMsg(-100, &tgbotapi.User{ID: 1, FirstName: "Carol"}, "git")})

		q := lastQuery(t, svc)
		if q.UserName != "Carol" || q.ChatID != "-100" {
			t.Errorf("origin = %q/%q, want Carol/-100", q.UserName, q.ChatID)
		}
	})

	t.Run("blank text ignored", func(t *testing.T) {
		b, api, _ := newTestBot(t, nil)
		b.handleUpdate(ctx, tgbotapi.Update{Message: textMsg(1, &tgbotapi.User{ID: 1}, "   ")})
		if api.count() != 0 {
			t.Errorf("sent %d messages, want 0", api.count())
		}
	})

	t.Run("message without sender ignored", func(t *testing.T) {
		b, api, _ := newTestBot(t, nil)
		b.handleUpdate(ctx, tgbotapi.Update{Message: textMsg(1, nil, "python")})
		if api.count() != 0 {
			t.Errorf("sent %d messages, want 0", api.count())
		}
	})

	t.Run("user not allowed", func(t *testing.T) {
		b, api, svc := newTestBot(t, &config.Config{AllowedUsers: []int64{10}})
		b.handleUpdate(ctx, tgbotapi.Update{Message: textMsg(1, &tgbotapi.User{ID: 99, UserName: "eve"}, "python")})

		if diff := cmp.Diff("Access denied.", api.lastText()); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
		queries, err := svc.Queries(ctx)
		if err != nil {
			t.Fatalf("queries: %v", err)
		}
		if len(queries) != 0 {
			t.Errorf("logged %d queries for a denied user", len(queries))
		}
	})

	t.Run("command dispatched", func(t *testing.T) {
		b, api, _ := newTestBot(t, &config.Config{AllowedUsers: []int64{7}})
		b.handleUpdate(ctx, tgbotapi.Update{Message: commandMsg(100, "topic", "python")})
		requireContains(t, api.lastText(), "python: A programming language.")
	})
}

func TestHandleCallback(t *testing.T) {
	ctx := context.Background()

	newCallback := func(data string) *tgbotapi.CallbackQuery {
		return &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 7, UserName: "alice"},
			Data:    data,
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 100}},
		}
	}

	t.Run("invalid data format", func(t *testing.T) {
		b, api, _ := newTestBot(t, nil)
		b.handleCallback(ctx, newCallback("nocolon"))
		if api.count() != 0 {
			t.Errorf("sent %d text messages, want 0", api.count())
		}
	})

	t.Run("topic callback", func(t *testing.T) {
		b, api, _ := newTestBot(t, nil)
		b.handleCallback(ctx, newCallback("topic:2"))
		if diff := cmp.Diff("git: A version control system.", api.lastText()); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("deleted topic", func(t *testing.T) {
		b, api, svc := newTestBot(t, nil)
		if err := svc.Delete(ctx, 2); err != nil {
			t.Fatalf("delete: %v", err)
		}
		b.handleCallback(ctx, newCallback("topic:2"))
		requireContains(t, api.lastText(), "no longer exists")
	})

	t.Run("unknown action", func(t *testing.T) {
		b, api, _ := newTestBot(t, nil)
		b.handleCallback(ctx, newCallback("delete:1"))
		if api.count() != 0 {
			t.Errorf("sent %d text messages, want 0", api.count())
		}
	})

	t.Run("user not allowed", func(t *testing.T) {
		b, api, _ := newTestBot(t, &config.Config{AllowedUsers: []int64{1}})
		b.handleCallback(ctx, newCallback("topic:1"))
		if diff := cmp.Diff("Access denied.", api.lastText()); diff != "" {
			t.Errorf("reply mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestRunStopsOnCancel(t *testing.T) {
	b, api, _ := newTestBot(t, nil)
	updates := make(chan tgbotapi.Update)
	api.updates = updates

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()

	updates <- tgbotapi.Update{Message: commandMsg(100, "start", "")}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	requireContains(t, api.lastText(), "Welcome")
	api.mu.Lock()
	stopped := api.stopped
	api.mu.Unlock()
	if !stopped {
		t.Error("StopReceivingUpdates was not called")
	}
}

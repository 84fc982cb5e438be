package matcher

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"topic_bot/internal/model"
)

func TestMatch(t *testing.T) {
	topics := []model.Topic{
		{ID: 1, Name: "python", Explanation: "a language"},
		{ID: 2, Name: "flask", Explanation: "a framework"},
		{ID: 3, Name: "Python Flask", Explanation: "both"},
		{ID: 4, Name: "API", Explanation: "an interface"},
	}

	tests := []struct {
		name   string
		text   string
		topics []model.Topic
		wantID int64
		wantOK bool
	}{
		{name: "substring match", text: "I love python", topics: topics, wantID: 1, wantOK: true},
		{name: "no match", text: "nothing relevant", topics: topics, wantOK: false},
		{name: "text is case folded", text: "FLASK IS NEAT", topics: topics, wantID: 2, wantOK: true},
		{name: "name is case folded", text: "what is an api", topics: topics, wantID: 4, wantOK: true},
		{name: "first match wins over longer name", text: "python flask tutorial", topics: topics, wantID: 1, wantOK: true},
		{name: "inside a word", text: "pythonic code", topics: topics, wantID: 1, wantOK: true},
		{name: "empty text", text: "", topics: topics, wantOK: false},
		{name: "no topics", text: "python", topics: nil, wantOK: false},
		{name: "empty name never matches", text: "python", topics: []model.Topic{{ID: 9}, {ID: 1, Name: "python"}}, wantID: 1, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Match(tt.text, tt.topics)
			if diff := cmp.Diff(tt.wantOK, ok); diff != "" {
				t.Fatalf("ok mismatch (-want +got):\n%s", diff)
			}
			if !ok {
				if got != nil {
					t.Errorf("expected nil topic, got %+v", got)
				}
				return
			}
			if diff := cmp.Diff(tt.wantID, got.ID); diff != "" {
				t.Errorf("topic mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	topics := []model.Topic{
		{ID: 1, Name: "loop"},
		{ID: 2, Name: "for"},
		{ID: 3, Name: "while"},
	}
	first, ok := Match("a for loop inside a while", topics)
	if !ok {
		t.Fatal("expected a match")
	}
	for i := 0; i < 20; i++ {
		got, _ := Match("a for loop inside a while", topics)
		if got.ID != first.ID {
			t.Fatalf("run %d matched %d, first run matched %d", i, got.ID, first.ID)
		}
	}
	if first.ID != 1 {
		t.Errorf("expected topic order to decide, got %d", first.ID)
	}
}

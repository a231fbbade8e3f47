package persistence_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/example/recruitment-portal/internal/persistence"
)

func TestQuestionSetJSON(t *testing.T) {
	t.Parallel()

	t.Run("preserves order and variants", func(t *testing.T) {
		t.Parallel()

		set := persistence.QuestionSet{
			persistence.MultipleChoiceQuestion{Text: "2+2?", Options: []string{"3", "4"}, CorrectAnswer: "4"},
			persistence.FreeTextQuestion{Text: "Why us?"},
		}
		data, err := json.Marshal(set)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !strings.Contains(string(data), `"type":"multiple_choice"`) || !strings.Contains(string(data), `"type":"free_text"`) {
			t.Fatalf("expected type discriminators, got %s", data)
		}

		var decoded persistence.QuestionSet
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(decoded) != 2 {
			t.Fatalf("expected 2 questions, got %d", len(decoded))
		}
		mc, ok := decoded[0].(persistence.MultipleChoiceQuestion)
		if !ok || mc.CorrectAnswer != "4" || len(mc.Options) != 2 {
			t.Fatalf("unexpected first question: %#v", decoded[0])
		}
		if decoded[1].Kind() != persistence.QuestionFreeText || decoded[1].Prompt() != "Why us?" {
			t.Fatalf("unexpected second question: %#v", decoded[1])
		}
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		t.Parallel()

		var decoded persistence.QuestionSet
		if err := json.Unmarshal([]byte(`[{"type":"essay","text":"x"}]`), &decoded); err == nil {
			t.Fatal("expected error for unknown question type")
		}
	})
}

func TestUserFullName(t *testing.T) {
	t.Parallel()

	cases := map[string]persistence.User{
		"Ada Lovelace": {FirstName: "Ada", LastName: "Lovelace"},
		"Ada":          {FirstName: "Ada"},
		"Lovelace":     {LastName: "Lovelace"},
	}
	for want, user := range cases {
		if got := user.FullName(); got != want {
			t.Errorf("FullName() = %q, want %q", got, want)
		}
	}
}

package persistence

import (
	"encoding/json"
	"fmt"
)

// QuestionKind discriminates the question variants.
type QuestionKind string

const (
	QuestionMultipleChoice QuestionKind = "multiple_choice"
	QuestionFreeText       QuestionKind = "free_text"
)

// Question is implemented by MultipleChoiceQuestion and FreeTextQuestion only.
type Question interface {
	Kind() QuestionKind
	Prompt() string
	question()
}

// MultipleChoiceQuestion offers fixed options with a single correct answer.
type MultipleChoiceQuestion struct {
	Text          string
	Options       []string
	CorrectAnswer string
}

func (q MultipleChoiceQuestion) Kind() QuestionKind { return QuestionMultipleChoice }
func (q MultipleChoiceQuestion) Prompt() string     { return q.Text }
func (MultipleChoiceQuestion) question()            {}

// FreeTextQuestion accepts any answer and is never scored.
type FreeTextQuestion struct {
	Text string
}

func (q FreeTextQuestion) Kind() QuestionKind { return QuestionFreeText }
func (q FreeTextQuestion) Prompt() string     { return q.Text }
func (FreeTextQuestion) question()            {}

// QuestionSet is an ordered list of questions with a tagged JSON encoding.
type QuestionSet []Question

type questionEnvelope struct {
	Type          QuestionKind `json:"type"`
	Text          string       `json:"text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
}

// MarshalJSON encodes each question with its type discriminator.
func (s QuestionSet) MarshalJSON() ([]byte, error) {
	envelopes := make([]questionEnvelope, 0, len(s))
	for i, q := range s {
		switch v := q.(type) {
		case MultipleChoiceQuestion:
			envelopes = append(envelopes, questionEnvelope{Type: QuestionMultipleChoice, Text: v.Text, Options: v.Options, CorrectAnswer: v.CorrectAnswer})
		case FreeTextQuestion:
			envelopes = append(envelopes, questionEnvelope{Type: QuestionFreeText, Text: v.Text})
		default:
			return nil, fmt.Errorf("question %d: unsupported type %T", i, q)
		}
	}
	return json.Marshal(envelopes)
}

// UnmarshalJSON decodes the tagged representation written by MarshalJSON.
func (s *QuestionSet) UnmarshalJSON(data []byte) error {
	var envelopes []questionEnvelope
	if err := json.Unmarshal(data, &envelopes); err != nil {
		return err
	}
	set := make(QuestionSet, 0, len(envelopes))
	for i, env := range envelopes {
		switch env.Type {
		case QuestionMultipleChoice:
			set = append(set, MultipleChoiceQuestion{Text: env.Text, Options: env.Options, CorrectAnswer: env.CorrectAnswer})
		case QuestionFreeText:
			set = append(set, FreeTextQuestion{Text: env.Text})
		default:
			return fmt.Errorf("question %d: unknown type %q", i, env.Type)
		}
	}
	*s = set
	return nil
}

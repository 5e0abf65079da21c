package file

import (
	"context"
	"errors"
	"testing"

	"trivia-room-service/internal/domain"
	"github.com/spf13/afero"
)

const questionsYAML = `
default:
  - text: Bananas are berries.
    correct: true
  - text: Goldfish have a memory of only three seconds.
    correct: false
science:
  - text: Octopuses have three hearts.
    correct: true
`

func TestQuestionLoaderReadsBanks(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "questions.yaml", []byte(questionsYAML), 0o644)
	loader := NewQuestionLoader(fsys, "questions.yaml")

	questions, err := loader.LoadQuestions(context.Background(), domain.DefaultBankID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(questions) != 2 || questions[0].Text != "Bananas are berries." || !questions[0].Correct || questions[1].Correct {
		t.Fatalf("unexpected questions %+v", questions)
	}

	if _, err := loader.LoadQuestions(context.Background(), "history"); !errors.Is(err, domain.ErrQuestionBankNotFound) {
		t.Fatalf("expected bank not found, got %v", err)
	}
}

func TestQuestionLoaderRejectsBlankText(t *testing.T) {
	fsys := afero.NewMemMapFs()
	_ = afero.WriteFile(fsys, "questions.yaml", []byte("default:\n  - correct: true\n"), 0o644)

	if _, err := NewQuestionLoader(fsys, "questions.yaml").LoadQuestions(context.Background(), domain.DefaultBankID); err == nil {
		t.Fatalf("expected error for question without text")
	}
}

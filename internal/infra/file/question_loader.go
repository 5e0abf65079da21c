package file

import (
	"context"
	"fmt"

	"trivia-room-service/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// QuestionLoader reads question banks from a YAML file keyed by bank id:
//
//	default:
//	  - text: Bananas are berries.
//	    correct: true
//
// The file is re-read on every load; caching belongs to the repository.
type QuestionLoader struct {
	fs   afero.Fs
	path string
}

func NewQuestionLoader(fsys afero.Fs, path string) *QuestionLoader {
	return &QuestionLoader{fs: fsys, path: path}
}

func (l *QuestionLoader) LoadQuestions(_ context.Context, bankID string) ([]domain.Question, error) {
	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	var banks map[string][]domain.Question
	if err := yaml.Unmarshal(data, &banks); err != nil {
		return nil, fmt.Errorf("decode question file %s: %w", l.path, err)
	}
	questions, ok := banks[bankID]
	if !ok {
		return nil, domain.ErrQuestionBankNotFound
	}
	for i, q := range questions {
		if q.Text == "" {
			return nil, fmt.Errorf("question file %s: bank %s question %d has no text", l.path, bankID, i)
		}
	}
	return questions, nil
}

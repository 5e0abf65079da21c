package memory

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"trivia-room-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a question bank from a backing store (file, Postgres, ...).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context, bankID string) ([]domain.Question, error)
}

// QuestionRepository caches question banks with TTL to avoid repeated loads.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedBank
}

type cachedBank struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedBank),
	}
}

func (r *QuestionRepository) GetQuestions(ctx context.Context, bankID string) ([]domain.Question, error) {
	if questions, ok := r.cached(bankID); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		if questions, ok := r.cached(bankID); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx, bankID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		// rnd is not safe for concurrent use; ttlWithJitter runs under mu
		r.cache[bankID] = cachedBank{
			questions: questions,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (r *QuestionRepository) cached(bankID string) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[bankID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return append([]domain.Question(nil), entry.questions...), true
}

// StaticQuestionLoader is a loader backed by an in-memory map (built-in bank, tests).
type StaticQuestionLoader struct {
	banks map[string][]domain.Question
}

func NewStaticQuestionLoader(banks map[string][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{banks: banks}
}

// NewDefaultQuestionLoader serves the built-in bank under domain.DefaultBankID.
func NewDefaultQuestionLoader() *StaticQuestionLoader {
	return NewStaticQuestionLoader(map[string][]domain.Question{
		domain.DefaultBankID: domain.DefaultQuestions(),
	})
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context, bankID string) ([]domain.Question, error) {
	if questions, ok := l.banks[bankID]; ok {
		return append([]domain.Question(nil), questions...), nil
	}
	return nil, domain.ErrQuestionBankNotFound
}

// FallbackLoader tries each loader in order, moving on only when a bank is
// not found.
type FallbackLoader []QuestionLoader

func (f FallbackLoader) LoadQuestions(ctx context.Context, bankID string) ([]domain.Question, error) {
	for _, loader := range f {
		questions, err := loader.LoadQuestions(ctx, bankID)
		if err == nil {
			return questions, nil
		}
		if !errors.Is(err, domain.ErrQuestionBankNotFound) {
			return nil, err
		}
	}
	return nil, domain.ErrQuestionBankNotFound
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

package app

import "trivia-room-service/internal/domain"

const (
	feedbackCorrect = "Correct!"
	feedbackWrong   = "Wrong!"
)

// scoreAnswer is the only place correctness is decided. It returns the
// client-facing result and the points awarded.
func scoreAnswer(q domain.Question, answer bool) (domain.AnswerResult, int) {
	if answer == q.Correct {
		return domain.AnswerResult{IsCorrect: true, CorrectAnswer: q.Correct, Feedback: feedbackCorrect}, 1
	}
	return domain.AnswerResult{IsCorrect: false, CorrectAnswer: q.Correct, Feedback: feedbackWrong}, 0
}

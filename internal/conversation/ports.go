package conversation

import (
	"context"

	"mock-interview/internal/domain"
)

// QuestionSource выдает список вопросов для интервью
type QuestionSource interface {
	Questions(ctx context.Context, setup domain.Setup) ([]string, error)
}

// Handoff принимает завершенное интервью на оценку и возвращает ID интервью
type Handoff interface {
	Submit(ctx context.Context, submission domain.Submission) (string, error)
}

// Observer получает уведомления об изменениях для отображения на клиенте.
// Вызовы идут последовательно, в порядке событий.
type Observer interface {
	StateChanged(state State)
	QuestionChanged(index, total int, question string)
	TranscriptChanged(text string)
	SpeakingChanged(speaking bool)
	Completed(interviewID string, err error)
}

// NopObserver игнорирует все уведомления. Удобно встраивать, чтобы
// реализовать только нужные методы.
type NopObserver struct{}

func (NopObserver) StateChanged(State)               {}
func (NopObserver) QuestionChanged(int, int, string) {}
func (NopObserver) TranscriptChanged(string)         {}
func (NopObserver) SpeakingChanged(bool)             {}
func (NopObserver) Completed(string, error)          {}

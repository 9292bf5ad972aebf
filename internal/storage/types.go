package storage

import (
	"context"
	"errors"
	"time"

	"mock-interview/internal/domain"
)

// ErrNotFound возвращается, когда запись отсутствует
var ErrNotFound = errors.New("запись не найдена")

// DefaultUserID - пользователь для интервью без авторизации
const DefaultUserID = "guest"

// InterviewRecord - сохраненное интервью с исходной расшифровкой
type InterviewRecord struct {
	ID         string        `json:"id" firestore:"id"`
	UserID     string        `json:"userId" firestore:"userId"`
	Role       string        `json:"role" firestore:"role"`
	TechStack  string        `json:"techStack" firestore:"techStack"`
	Transcript []domain.Turn `json:"transcript" firestore:"transcript"`
	CreatedAt  time.Time     `json:"createdAt" firestore:"createdAt"`
	Duration   int           `json:"duration" firestore:"duration"`
}

// FeedbackRecord - оценка интервью, связанная с ним по InterviewID
type FeedbackRecord struct {
	ID          string    `json:"id" firestore:"id"`
	InterviewID string    `json:"interviewId" firestore:"interviewId"`
	CreatedAt   time.Time `json:"createdAt" firestore:"createdAt"`
	domain.Assessment
}

// Store - хранилище интервью и оценок
type Store interface {
	// SaveInterview сохраняет интервью, присваивая ID, если он пуст
	SaveInterview(ctx context.Context, rec *InterviewRecord) error
	// SaveFeedback сохраняет оценку, присваивая ID, если он пуст
	SaveFeedback(ctx context.Context, rec *FeedbackRecord) error
	GetInterview(ctx context.Context, id string) (*InterviewRecord, error)
	// FeedbackByInterview возвращает оценку интервью или ErrNotFound,
	// если она еще не готова
	FeedbackByInterview(ctx context.Context, interviewID string) (*FeedbackRecord, error)
	// ListInterviews возвращает интервью пользователя, новые первыми.
	// Пустой userID означает всех пользователей.
	ListInterviews(ctx context.Context, userID string) ([]InterviewRecord, error)
	Close() error
}

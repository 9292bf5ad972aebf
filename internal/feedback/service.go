package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
	"mock-interview/internal/prompts"
	"mock-interview/internal/storage"
)

// Completer - модель, возвращающая JSON по промпту
type Completer interface {
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)
}

// Service оценивает интервью и сохраняет результат
type Service struct {
	llm     Completer
	store   storage.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// SaveResult - идентификаторы сохраненных записей
type SaveResult struct {
	InterviewID string `json:"interviewId"`
	FeedbackID  string `json:"feedbackId"`
}

// New создает сервис оценки
func New(llm Completer, store storage.Store, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		llm:     llm,
		store:   store,
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Evaluate получает оценку расшифровки от модели
func (s *Service) Evaluate(ctx context.Context, sub domain.Submission) (domain.Assessment, error) {
	transcript, err := json.Marshal(sub.Transcript)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("ошибка сериализации расшифровки: %w", err)
	}

	prompt := prompts.GenerateFeedbackPrompt(sub.Role, sub.TechStack, string(transcript))
	response, err := s.llm.CompleteJSON(ctx, prompts.FeedbackSystemPrompt, prompt)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("ошибка вызова модели: %w", err)
	}

	assessment, err := parseAssessment(response)
	if err != nil {
		return domain.Assessment{}, err
	}
	if err := validateAssessment(assessment); err != nil {
		return domain.Assessment{}, fmt.Errorf("некорректная оценка: %w", err)
	}

	return assessment, nil
}

// Save оценивает интервью, затем сохраняет интервью и оценку
func (s *Service) Save(ctx context.Context, sub domain.Submission) (SaveResult, error) {
	assessment, err := s.Evaluate(ctx, sub)
	if err != nil {
		return SaveResult{}, err
	}

	userID := sub.UserID
	if userID == "" {
		userID = storage.DefaultUserID
	}

	interview := &storage.InterviewRecord{
		UserID:     userID,
		Role:       sub.Role,
		TechStack:  sub.TechStack,
		Transcript: sub.Transcript,
		CreatedAt:  s.now().UTC(),
		Duration:   sub.Duration,
	}
	if err := s.store.SaveInterview(ctx, interview); err != nil {
		return SaveResult{}, fmt.Errorf("ошибка сохранения интервью: %w", err)
	}

	record := &storage.FeedbackRecord{
		InterviewID: interview.ID,
		CreatedAt:   s.now().UTC(),
		Assessment:  assessment,
	}
	if err := s.store.SaveFeedback(ctx, record); err != nil {
		return SaveResult{}, fmt.Errorf("ошибка сохранения оценки: %w", err)
	}

	s.metrics.IncrementFeedbackGenerated()
	s.logger.Info("интервью оценено и сохранено",
		zap.String("interview_id", interview.ID),
		zap.String("feedback_id", record.ID),
		zap.Int("total_score", assessment.TotalScore))

	return SaveResult{InterviewID: interview.ID, FeedbackID: record.ID}, nil
}

// Submit передает расшифровку на оценку и возвращает ID интервью
func (s *Service) Submit(ctx context.Context, sub domain.Submission) (string, error) {
	result, err := s.Save(ctx, sub)
	if err != nil {
		return "", err
	}
	return result.InterviewID, nil
}

// rawAssessment допускает дробные баллы в ответе модели
type rawAssessment struct {
	TotalScore float64  `json:"totalScore"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Feedback   string   `json:"feedback"`
	Questions  []struct {
		Question    string  `json:"question"`
		UserAnswer  string  `json:"userAnswer"`
		Score       float64 `json:"score"`
		Feedback    string  `json:"feedback"`
		IdealAnswer string  `json:"idealAnswer"`
	} `json:"questions"`
}

func parseAssessment(response string) (domain.Assessment, error) {
	var raw rawAssessment
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		return domain.Assessment{}, fmt.Errorf("ошибка парсинга оценки: %w", err)
	}

	a := domain.Assessment{
		TotalScore: int(math.Round(raw.TotalScore)),
		Strengths:  raw.Strengths,
		Weaknesses: raw.Weaknesses,
		Feedback:   raw.Feedback,
		Questions:  make([]domain.QuestionAssessment, 0, len(raw.Questions)),
	}
	for _, q := range raw.Questions {
		a.Questions = append(a.Questions, domain.QuestionAssessment{
			Question:    q.Question,
			UserAnswer:  q.UserAnswer,
			Score:       int(math.Round(q.Score)),
			Feedback:    q.Feedback,
			IdealAnswer: q.IdealAnswer,
		})
	}
	return a, nil
}

func validateAssessment(a domain.Assessment) error {
	if a.TotalScore < 0 || a.TotalScore > 100 {
		return fmt.Errorf("totalScore %d вне диапазона 0-100", a.TotalScore)
	}
	for i, q := range a.Questions {
		if q.Score < 0 || q.Score > 10 {
			return fmt.Errorf("score вопроса %d (%d) вне диапазона 0-10", i+1, q.Score)
		}
	}
	return nil
}

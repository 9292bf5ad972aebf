package interviewer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mock-interview/internal/config"
	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
	"mock-interview/internal/prompts"
)

// Completer - модель, возвращающая JSON по промпту
type Completer interface {
	CompleteJSON(ctx context.Context, system, prompt string) (string, error)
}

// Service подбирает вопросы интервью: по шаблонам или через модель
type Service struct {
	mode     string
	manual   []string
	fallback []string
	llm      Completer
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New создает сервис вопросов. llm может быть nil, тогда режим llm
// работает как manual.
func New(mode string, questions config.QuestionsContent, llm Completer, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		mode:     mode,
		manual:   questions.Manual,
		fallback: questions.Fallback,
		llm:      llm,
		logger:   logger,
		metrics:  m,
	}
}

// GenerateQuestions возвращает вопросы для интервью. Не возвращает ошибку:
// при сбое модели используются шаблонные вопросы.
func (s *Service) GenerateQuestions(ctx context.Context, setup domain.Setup) []string {
	count := setup.QuestionCount()

	if s.mode == config.QuestionModeLLM && s.llm != nil {
		questions, err := s.generate(ctx, setup, count)
		if err == nil {
			return questions
		}
		s.logger.Warn("генерация вопросов не удалась, используются шаблоны",
			zap.String("role", setup.Role), zap.Error(err))
		s.metrics.IncrementFallbacksUsed()
	}

	return s.manualQuestions(setup, count)
}

// Questions реализует источник вопросов для контроллера в том же процессе
func (s *Service) Questions(ctx context.Context, setup domain.Setup) ([]string, error) {
	return s.GenerateQuestions(ctx, setup), nil
}

// Fallback возвращает фиксированный список на случай, когда запрос
// вопросов не удался целиком
func (s *Service) Fallback() []string {
	return append([]string(nil), s.fallback...)
}

func (s *Service) manualQuestions(setup domain.Setup, count int) []string {
	replacer := strings.NewReplacer("{role}", setup.Role, "{techStack}", setup.TechStack)

	questions := make([]string, 0, len(s.manual))
	for _, template := range s.manual {
		questions = append(questions, replacer.Replace(template))
	}
	if count < len(questions) {
		questions = questions[:count]
	}
	return questions
}

func (s *Service) generate(ctx context.Context, setup domain.Setup, count int) ([]string, error) {
	prompt := prompts.GenerateQuestionsPrompt(setup.Role, setup.TechStack, count)

	response, err := s.llm.CompleteJSON(ctx, prompts.QuestionsSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("ошибка вызова модели: %w", err)
	}

	questions, err := ParseQuestions(response)
	if err != nil {
		return nil, err
	}
	if len(questions) > count {
		questions = questions[:count]
	}

	s.logger.Info("вопросы сгенерированы моделью",
		zap.String("role", setup.Role), zap.Int("count", len(questions)))
	return questions, nil
}

// ParseQuestions разбирает JSON-массив вопросов (или объект {"questions": [...]}),
// отбрасывая пустые строки
func ParseQuestions(response string) ([]string, error) {
	var raw []string
	if err := json.Unmarshal([]byte(response), &raw); err != nil {
		var wrapped struct {
			Questions []string `json:"questions"`
		}
		if errObj := json.Unmarshal([]byte(response), &wrapped); errObj != nil {
			return nil, fmt.Errorf("ошибка парсинга вопросов: %w", err)
		}
		raw = wrapped.Questions
	}

	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		if q = strings.TrimSpace(q); q != "" {
			questions = append(questions, q)
		}
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("модель не вернула ни одного вопроса")
	}
	return questions, nil
}

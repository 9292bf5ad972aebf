package interviewer

import (
	"context"

	"go.uber.org/zap"

	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
)

// Source - источник вопросов
type Source interface {
	Questions(ctx context.Context, setup domain.Setup) ([]string, error)
}

// FallbackSource возвращает фиксированный список, если основной источник
// ответил ошибкой или пустым списком
type FallbackSource struct {
	source   Source
	fallback []string
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewFallbackSource(source Source, fallback []string, logger *zap.Logger, m *metrics.Metrics) *FallbackSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackSource{
		source:   source,
		fallback: append([]string(nil), fallback...),
		logger:   logger,
		metrics:  m,
	}
}

func (f *FallbackSource) Questions(ctx context.Context, setup domain.Setup) ([]string, error) {
	questions, err := f.source.Questions(ctx, setup)
	if err == nil && len(questions) > 0 {
		return questions, nil
	}

	if err != nil {
		f.logger.Warn("не удалось получить вопросы, используется запасной список", zap.Error(err))
	} else {
		f.logger.Warn("получен пустой список вопросов, используется запасной список")
	}
	f.metrics.IncrementFallbacksUsed()
	return append([]string(nil), f.fallback...), nil
}

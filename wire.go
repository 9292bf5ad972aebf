package main

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"mock-interview/internal/api"
	"mock-interview/internal/config"
	"mock-interview/internal/conversation"
	"mock-interview/internal/feedback"
	"mock-interview/internal/interviewer"
	"mock-interview/internal/metrics"
	"mock-interview/internal/server"
	"mock-interview/internal/storage"
	"mock-interview/internal/telegram"
)

// app - собранные зависимости приложения
type app struct {
	cfg       *config.AppConfig
	content   *config.Content
	logger    *zap.Logger
	metrics   *metrics.Metrics
	store     storage.Store
	llm       *api.OpenAIClient
	questions *interviewer.Service
	feedback  *feedback.Service
}

// newApp загружает настройки и создает сервисы. override позволяет
// команде поправить настройки до создания логгера.
func newApp(ctx context.Context, fs afero.Fs, override func(*config.AppConfig)) (*app, error) {
	cfg, err := config.LoadAppConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	logger, err := config.SetupLogging(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("ошибка настройки логирования: %w", err)
	}

	content, err := config.LoadContent(fs, cfg.Interview.ContentFile)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки текстов интервью: %w", err)
	}

	store, err := openStore(ctx, fs, cfg.Storage)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		content: content,
		logger:  logger,
		metrics: metrics.NewMetrics(),
		store:   store,
	}

	var completer interviewer.Completer
	if cfg.OpenAI.Enabled() {
		if err := cfg.OpenAI.ValidateConfig(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("некорректные настройки OpenAI: %w", err)
		}
		a.llm = api.NewOpenAIClient(cfg.OpenAI, logger, a.metrics)
		completer = a.llm
		a.feedback = feedback.New(a.llm, store, logger, a.metrics)
		logger.Info("модель подключена", zap.Any("model", cfg.OpenAI.GetModelInfo()))
	} else {
		logger.Warn("OPENAI_API_KEY не задан: оценка интервью отключена")
	}

	a.questions = interviewer.New(cfg.Interview.QuestionMode, content.Questions, completer, logger, a.metrics)

	logger.Info("приложение инициализировано",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("question_mode", cfg.Interview.QuestionMode))
	return a, nil
}

func openStore(ctx context.Context, fs afero.Fs, cfg config.StorageConfig) (storage.Store, error) {
	switch cfg.Backend {
	case config.StorageFirestore:
		store, err := storage.NewFirestoreStore(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к Firestore: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewFileStore(fs, cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("ошибка инициализации хранилища: %w", err)
		}
		return store, nil
	}
}

// handoff возвращает получателя завершенных интервью или nil без модели
func (a *app) handoff() conversation.Handoff {
	if a.feedback == nil {
		return nil
	}
	return a.feedback
}

func (a *app) saver() server.InterviewSaver {
	if a.feedback == nil {
		return nil
	}
	return a.feedback
}

func (a *app) feedbackReader() telegram.FeedbackReader {
	if a.feedback == nil {
		return nil
	}
	return a.store
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("ошибка закрытия хранилища", zap.Error(err))
	}
	_ = a.logger.Sync()
}

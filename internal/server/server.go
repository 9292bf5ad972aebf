// Package server реализует HTTP API приложения: генерацию вопросов,
// сохранение интервью, выдачу оценок и websocket-сессии.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	_ "mock-interview/internal/docs"

	"mock-interview/internal/config"
	"mock-interview/internal/domain"
	"mock-interview/internal/feedback"
	"mock-interview/internal/interviewer"
	"mock-interview/internal/metrics"
	"mock-interview/internal/ratelimit"
	"mock-interview/internal/storage"
)

// QuestionGenerator выдает вопросы интервью. Ошибок не возвращает:
// при сбое отдается запасной список.
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, setup domain.Setup) []string
	Fallback() []string
}

// InterviewSaver оценивает и сохраняет завершенное интервью
type InterviewSaver interface {
	Save(ctx context.Context, sub domain.Submission) (feedback.SaveResult, error)
}

// ErrorResponse - тело ответа с ошибкой
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse - тело ответа для незавершенной операции
type StatusResponse struct {
	Status string `json:"status"`
}

// Server - HTTP сервер приложения
type Server struct {
	cfg       config.ServerConfig
	questions QuestionGenerator
	saver     InterviewSaver
	store     storage.Store
	logger    *zap.Logger
	metrics   *metrics.Metrics
	limiter   *ratelimit.RateLimiter[string]

	mux    *http.ServeMux
	server *http.Server
}

// New создает сервер и регистрирует маршруты API. saver может быть nil,
// тогда сохранение интервью возвращает ошибку.
func New(cfg config.ServerConfig, questions QuestionGenerator, saver InterviewSaver, store storage.Store, logger *zap.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:       cfg,
		questions: questions,
		saver:     saver,
		store:     store,
		logger:    logger,
		metrics:   m,
		limiter:   ratelimit.NewRateLimiter[string](cfg.RateLimit, time.Minute),
		mux:       http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.Handle("POST /api/interview/generate", s.api(s.handleGenerate))
	s.mux.Handle("POST /api/interview/save", s.api(s.handleSave))
	s.mux.Handle("GET /api/interview/{id}", s.api(s.handleGetInterview))
	s.mux.Handle("GET /api/interview/{id}/feedback", s.api(s.handleGetFeedback))
	s.mux.Handle("GET /api/interviews", s.api(s.handleListInterviews))
	s.mux.Handle("GET /api/metrics", s.api(s.handleMetrics))

	// Swagger UI
	s.mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// Mount добавляет обработчик, например websocket-сессии или health
func (s *Server) Mount(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
}

// Mux возвращает mux сервера для регистрации дополнительных маршрутов
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

// Handler возвращает корневой обработчик
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe запускает сервер. Блокируется до отмены контекста.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
	}

	s.logger.Info("HTTP сервер запущен", zap.Int("port", s.cfg.Port))

	go s.cleanupLimiter(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info("HTTP сервер останавливается")
		timeout := s.cfg.ShutdownTimeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

func (s *Server) cleanupLimiter(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.limiter.Cleanup()
		}
	}
}

// api оборачивает обработчик ограничением частоты, таймаутом записи и журналом
func (s *Server) api(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		if !s.limiter.IsAllowed(clientKey(r)) {
			writeJSON(rec, http.StatusTooManyRequests, ErrorResponse{Error: "Too many requests"})
		} else {
			if s.cfg.WriteTimeout > 0 {
				ctx, cancel := context.WithTimeout(r.Context(), s.cfg.WriteTimeout)
				defer cancel()
				r = r.WithContext(ctx)
			}
			h(rec, r)
		}

		s.logger.Debug("HTTP запрос",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// handleGenerate возвращает вопросы для интервью.
//
// @Summary     Generate interview questions
// @Description Returns questions for the role and tech stack. Never fails: a malformed
// @Description request or a generation error yields the fallback list.
// @Tags        interview
// @Accept      json
// @Produce     json
// @Param       request  body      interviewer.GenerateRequest  true  "Interview parameters"
// @Success     200      {object}  interviewer.GenerateResponse
// @Router      /api/interview/generate [post]
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req interviewer.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("некорректный запрос генерации вопросов", zap.Error(err))
		s.metrics.IncrementFallbacksUsed()
		writeJSON(w, http.StatusOK, interviewer.GenerateResponse{Questions: s.questions.Fallback()})
		return
	}

	questions := s.questions.GenerateQuestions(r.Context(), domain.Setup{
		Role:      req.Role,
		TechStack: req.TechStack,
		Count:     req.Count,
	})
	writeJSON(w, http.StatusOK, interviewer.GenerateResponse{Questions: questions})
}

// handleSave оценивает и сохраняет интервью.
//
// @Summary     Save interview
// @Description Evaluates the transcript, stores the interview and its feedback.
// @Tags        interview
// @Accept      json
// @Produce     json
// @Param       submission  body      domain.Submission  true  "Finished interview"
// @Success     200         {object}  feedback.SaveResult
// @Failure     500         {object}  ErrorResponse
// @Router      /api/interview/save [post]
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var sub domain.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		s.logger.Warn("некорректный запрос сохранения интервью", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save interview"})
		return
	}
	if s.saver == nil {
		s.logger.Error("оценка интервью недоступна: не настроена модель")
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save interview"})
		return
	}

	result, err := s.saver.Save(r.Context(), sub)
	if err != nil {
		s.logger.Error("ошибка сохранения интервью", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to save interview"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleGetInterview возвращает сохраненное интервью.
//
// @Summary     Get interview
// @Tags        interview
// @Produce     json
// @Param       id   path      string  true  "Interview ID"
// @Success     200  {object}  storage.InterviewRecord
// @Failure     404  {object}  ErrorResponse
// @Failure     500  {object}  ErrorResponse
// @Router      /api/interview/{id} [get]
func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.GetInterview(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Interview not found"})
		return
	}
	if err != nil {
		s.logger.Error("ошибка чтения интервью", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load interview"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetFeedback возвращает оценку интервью.
//
// @Summary     Get interview feedback
// @Description Returns 202 while the feedback is not ready yet.
// @Tags        feedback
// @Produce     json
// @Param       id   path      string  true  "Interview ID"
// @Success     200  {object}  storage.FeedbackRecord
// @Success     202  {object}  StatusResponse
// @Failure     500  {object}  ErrorResponse
// @Router      /api/interview/{id}/feedback [get]
func (s *Server) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.FeedbackByInterview(r.Context(), r.PathValue("id"))
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusAccepted, StatusResponse{Status: "processing"})
		return
	}
	if err != nil {
		s.logger.Error("ошибка чтения оценки", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to load feedback"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleListInterviews возвращает интервью пользователя.
//
// @Summary     List interviews
// @Description Newest first. Without userId returns interviews of all users.
// @Tags        interview
// @Produce     json
// @Param       userId  query     string  false  "User ID"
// @Success     200     {array}   storage.InterviewRecord
// @Failure     500     {object}  ErrorResponse
// @Router      /api/interviews [get]
func (s *Server) handleListInterviews(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.ListInterviews(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.logger.Error("ошибка чтения списка интервью", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Failed to list interviews"})
		return
	}
	if records == nil {
		records = []storage.InterviewRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// handleMetrics возвращает счетчики приложения.
//
// @Summary     Application metrics
// @Tags        metrics
// @Produce     json
// @Success     200  {object}  metrics.Snapshot
// @Router      /api/metrics [get]
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// clientKey определяет клиента для ограничения частоты запросов
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

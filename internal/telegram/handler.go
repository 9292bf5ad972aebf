package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mock-interview/internal/config"
	"mock-interview/internal/conversation"
	"mock-interview/internal/domain"
	"mock-interview/internal/feedback"
	"mock-interview/internal/metrics"
	"mock-interview/internal/ratelimit"
	"mock-interview/internal/setup"
	"mock-interview/internal/speech"
	"mock-interview/internal/storage"
)

// Sender отправляет сообщения в чат
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// FeedbackReader читает готовую оценку интервью
type FeedbackReader interface {
	FeedbackByInterview(ctx context.Context, interviewID string) (*storage.FeedbackRecord, error)
}

// Config задает тексты, задержки и ограничения бота
type Config struct {
	Content       *config.Content
	IntroDelay    time.Duration
	RedirectDelay time.Duration
	RateLimit     int
	SessionTTL    time.Duration
}

type Handler struct {
	sender        Sender
	cfg           Config
	source        conversation.QuestionSource
	handoff       conversation.Handoff
	feedback      FeedbackReader
	logger        *zap.Logger
	metrics       *metrics.Metrics
	sessions      map[int64]*UserSession
	sessionsMutex sync.RWMutex
	rateLimiter   *ratelimit.RateLimiter[int64]
}

// NewHandler создает обработчик. handoff и reader могут быть nil, тогда
// интервью не оцениваются.
func NewHandler(sender Sender, cfg Config, source conversation.QuestionSource, handoff conversation.Handoff, reader FeedbackReader, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Content == nil {
		cfg.Content = config.DefaultContent()
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	return &Handler{
		sender:      sender,
		cfg:         cfg,
		source:      source,
		handoff:     handoff,
		feedback:    reader,
		logger:      logger,
		metrics:     m,
		sessions:    make(map[int64]*UserSession),
		rateLimiter: ratelimit.NewRateLimiter[int64](cfg.RateLimit, time.Minute),
	}
}

// Run запускает очистку сессий и polling до отмены контекста
func (h *Handler) Run(ctx context.Context, bot *Bot) error {
	h.startSessionCleanup(ctx)
	h.logger.Info("Telegram бот запущен")
	err := bot.StartPolling(ctx, h.HandleUpdate)
	h.closeAll()
	return err
}

func (h *Handler) startSessionCleanup(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupInactiveSessions()
				h.rateLimiter.Cleanup()
			}
		}
	}()
}

func (h *Handler) cleanupInactiveSessions() {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	cutoff := time.Now().Add(-h.cfg.SessionTTL)
	for uid, sess := range h.sessions {
		sess.mu.Lock()
		inactive := sess.LastActivity.Before(cutoff)
		sess.mu.Unlock()
		if inactive {
			h.stopSession(sess)
			delete(h.sessions, uid)
		}
	}
}

func (h *Handler) closeAll() {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()
	for uid, sess := range h.sessions {
		h.stopSession(sess)
		delete(h.sessions, uid)
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if !h.rateLimiter.IsAllowed(userID) {
		h.send(chatID, "⏳ Слишком много сообщений. Пожалуйста, подождите минуту.")
		return
	}

	session := h.getOrCreateSession(userID, chatID, update.Message.From.FirstName)
	session.mu.Lock()
	session.LastActivity = time.Now()
	session.mu.Unlock()

	if strings.HasPrefix(text, "/") {
		h.handleCommand(ctx, chatID, text, session)
		return
	}
	h.handleUserInput(chatID, text, session)
}

func (h *Handler) getOrCreateSession(userID, chatID int64, name string) *UserSession {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	if sess, ok := h.sessions[userID]; ok {
		return sess
	}
	if name == "" {
		name = "You"
	}
	sess := &UserSession{
		UserID:       userID,
		ChatID:       chatID,
		Name:         name,
		State:        StateIdle,
		LastActivity: time.Now(),
	}
	h.sessions[userID] = sess
	return sess
}

// handleCommand обрабатывает команды бота
func (h *Handler) handleCommand(ctx context.Context, chatID int64, command string, session *UserSession) {
	command, _, _ = strings.Cut(command, " ")
	command, _, _ = strings.Cut(command, "@")

	switch command {
	case "/start":
		h.handleStartCommand(ctx, chatID, session)
	case "/help":
		h.handleHelpCommand(chatID)
	case "/status":
		h.handleStatusCommand(chatID, session)
	case "/next":
		h.withController(chatID, session, (*conversation.Controller).Advance)
	case "/done":
		h.withController(chatID, session, (*conversation.Controller).StopCapture)
	case "/mic":
		h.withController(chatID, session, (*conversation.Controller).StartCapture)
	case "/report":
		h.handleReportCommand(ctx, chatID, session)
	case "/stop":
		h.handleStopCommand(chatID, session)
	default:
		h.send(chatID, "Неизвестная команда. Используйте /help для получения списка команд.")
	}
}

// handleStartCommand запускает мастер настройки нового интервью
func (h *Handler) handleStartCommand(ctx context.Context, chatID int64, session *UserSession) {
	session.mu.Lock()
	state := session.State
	session.mu.Unlock()
	if state == StateInterview {
		h.send(chatID, "У вас уже идет интервью. Используйте /status для проверки прогресса или /stop, чтобы остановить его.")
		return
	}

	h.stopSession(session)

	out := &chatOutput{handler: h, chatID: chatID}
	flow := setup.NewFlow(setup.Config{RedirectDelay: h.cfg.RedirectDelay},
		setup.NewWizard(setup.MessagesFromContent(h.cfg.Content.Wizard)), out, nil,
		&setupObserver{ctx: ctx, handler: h, session: session}, h.logger, h.metrics)

	session.mu.Lock()
	session.State = StateSetup
	session.Flow = flow
	session.InterviewID = ""
	session.mu.Unlock()

	flow.Start()
}

// handleHelpCommand обрабатывает команду /help
func (h *Handler) handleHelpCommand(chatID int64) {
	helpText := `🤖 Тренажер собеседований

Команды:
/start - Настроить и начать новое интервью
/next - Перейти к следующему вопросу
/done - Закончить ответ на текущий вопрос
/mic - Ответить на текущий вопрос заново
/status - Проверить прогресс интервью
/report - Получить оценку последнего интервью
/stop - Остановить интервью
/help - Показать это сообщение

Как это работает:
1. Используйте /start и ответьте на вопросы о роли, стеке и количестве вопросов (от %d до %d)
2. Отвечайте на вопросы интервьюера сообщениями, ответ можно разбить на несколько сообщений
3. Когда ответ готов, используйте /next
4. После последнего вопроса придет оценка интервью`

	h.send(chatID, fmt.Sprintf(helpText, setup.MinQuestions, setup.MaxQuestions))
}

// handleStatusCommand показывает статус интервью
func (h *Handler) handleStatusCommand(chatID int64, session *UserSession) {
	session.mu.Lock()
	state := session.State
	flow := session.Flow
	ctrl := session.Controller
	interviewID := session.InterviewID
	session.mu.Unlock()

	switch state {
	case StateIdle:
		h.send(chatID, "Интервью не начато. Используйте /start для начала.")
	case StateSetup:
		h.send(chatID, fmt.Sprintf("⚙️ Настройка интервью, шаг: %s", flow.Checkpoint()))
	case StateInterview:
		snap := ctrl.Snapshot()
		h.send(chatID, fmt.Sprintf("📊 Прогресс интервью\n\n❓ Вопрос: %d/%d\n⏰ Состояние: %s",
			snap.Index+1, snap.Total, stateDescription(snap.State)))
	case StateCompleted:
		if interviewID == "" {
			h.send(chatID, "✅ Интервью завершено.")
			return
		}
		h.send(chatID, fmt.Sprintf("✅ Интервью завершено!\n🆔 ID: %s\n\nИспользуйте /report для получения оценки", interviewID))
	}
}

func (h *Handler) handleReportCommand(ctx context.Context, chatID int64, session *UserSession) {
	session.mu.Lock()
	interviewID := session.InterviewID
	session.mu.Unlock()

	if interviewID == "" || h.feedback == nil {
		h.send(chatID, "❌ Оценка доступна только после завершения интервью. Используйте /start для начала нового интервью.")
		return
	}
	h.sendReport(ctx, chatID, interviewID)
}

// handleStopCommand останавливает интервью
func (h *Handler) handleStopCommand(chatID int64, session *UserSession) {
	session.mu.Lock()
	state := session.State
	session.mu.Unlock()
	if state == StateIdle || state == StateCompleted {
		h.send(chatID, "Интервью не запущено.")
		return
	}

	h.stopSession(session)
	session.mu.Lock()
	session.State = StateIdle
	session.mu.Unlock()
	h.send(chatID, "🛑 Интервью остановлено.")
}

func (h *Handler) withController(chatID int64, session *UserSession, fn func(*conversation.Controller)) {
	session.mu.Lock()
	ctrl := session.Controller
	state := session.State
	session.mu.Unlock()

	if state != StateInterview || ctrl == nil {
		h.send(chatID, "Интервью не идет. Используйте /start для начала.")
		return
	}
	fn(ctrl)
}

// validateUserInput отсеивает слишком длинные и спам-сообщения
func (h *Handler) validateUserInput(text string) error {
	if len(text) > 4000 {
		return fmt.Errorf("сообщение слишком длинное (максимум 4000 символов)")
	}

	// Проверка на спам/повторяющиеся символы
	if len(text) > 10 && strings.Count(text, text[:1]) > len(text)*8/10 {
		return fmt.Errorf("сообщение содержит слишком много повторяющихся символов")
	}

	return nil
}

// handleUserInput передает текст мастеру настройки или в ответ на вопрос
func (h *Handler) handleUserInput(chatID int64, text string, session *UserSession) {
	if err := h.validateUserInput(text); err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	session.mu.Lock()
	state := session.State
	flow := session.Flow
	input := session.Input
	session.mu.Unlock()

	switch state {
	case StateSetup:
		flow.Answer(text)
	case StateInterview:
		if !input.Feed(text) {
			h.send(chatID, "Сейчас ответ не записывается. Используйте /mic, чтобы ответить на вопрос заново, или /next для следующего вопроса.")
		}
	default:
		h.send(chatID, "Сейчас не время для ответов. Используйте /start для начала интервью или /help для помощи.")
	}
}

// startInterview запускает интервью с параметрами из мастера настройки
func (h *Handler) startInterview(ctx context.Context, session *UserSession, params domain.Setup) {
	input := speech.NewLineInput()
	ctrl := conversation.New(conversation.Config{
		UserID:     fmt.Sprintf("telegram-%d", session.UserID),
		UserName:   session.Name,
		Setup:      params,
		Greeting:   h.cfg.Content.RenderGreeting(session.Name, params.Role),
		Closing:    h.cfg.Content.Interview.Closing,
		IntroDelay: h.cfg.IntroDelay,
	}, h.source, &chatOutput{handler: h, chatID: session.ChatID}, input, h.handoff,
		&interviewObserver{handler: h, session: session}, h.logger, h.metrics)

	session.mu.Lock()
	if session.State != StateSetup {
		session.mu.Unlock()
		return
	}
	session.State = StateInterview
	session.Flow = nil
	session.Controller = ctrl
	session.Input = input
	session.mu.Unlock()

	h.send(session.ChatID, fmt.Sprintf("🎯 Готовлю %d вопросов для роли %s (%s)...", params.QuestionCount(), params.Role, params.TechStack))
	ctrl.Start(ctx)
}

// stopSession останавливает мастер и интервью сессии
func (h *Handler) stopSession(session *UserSession) {
	session.mu.Lock()
	flow := session.Flow
	ctrl := session.Controller
	session.Flow = nil
	session.Controller = nil
	session.Input = nil
	session.mu.Unlock()

	if flow != nil {
		flow.Close()
	}
	if ctrl != nil {
		ctrl.Close()
	}
}

func (h *Handler) sendReport(ctx context.Context, chatID int64, interviewID string) {
	rec, err := h.feedback.FeedbackByInterview(ctx, interviewID)
	if errors.Is(err, storage.ErrNotFound) {
		h.send(chatID, "⏳ Оценка еще готовится. Попробуйте /report чуть позже.")
		return
	}
	if err != nil {
		h.logger.Error("ошибка чтения оценки", zap.String("interview_id", interviewID), zap.Error(err))
		h.send(chatID, "❌ Не удалось загрузить оценку интервью.")
		return
	}
	h.send(chatID, feedback.FormatReport(rec.Assessment))
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.sender.SendMessage(chatID, text); err != nil {
		h.logger.Error("ошибка отправки сообщения", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func stateDescription(state conversation.State) string {
	switch state {
	case conversation.StateFetching:
		return "подготовка вопросов"
	case conversation.StateIntro:
		return "приветствие"
	case conversation.StateAsking:
		return "задаю вопрос"
	case conversation.StateListening:
		return "записываю ответ"
	case conversation.StateProcessing:
		return "ответ записан"
	case conversation.StateFinished:
		return "завершено"
	default:
		return string(state)
	}
}

package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"mock-interview/internal/config"
	"mock-interview/internal/conversation"
	"mock-interview/internal/metrics"
	"mock-interview/internal/setup"
	"mock-interview/internal/speech"
)

const defaultUserName = "You"

// Config задает тексты и задержки сессий
type Config struct {
	Content       *config.Content
	GreetingDelay time.Duration
	IntroDelay    time.Duration
	RedirectDelay time.Duration
	SessionTTL    time.Duration
	InterviewPath string
	FeedbackPath  string
}

// Kind - вид сессии
type Kind string

const (
	KindSetup     Kind = "setup"
	KindInterview Kind = "interview"
)

// Session - одно websocket-подключение клиента
type Session struct {
	ID   string
	Kind Kind

	conn *conn

	mu           sync.Mutex
	lastActivity time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

// LastActivity возвращает время последнего сообщения клиента
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Handler обслуживает websocket-сессии настройки и интервью
type Handler struct {
	cfg      Config
	source   conversation.QuestionSource
	handoff  conversation.Handoff
	logger   *zap.Logger
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	sessions      map[string]*Session
	sessionsMutex sync.RWMutex
}

// NewHandler создает обработчик. handoff может быть nil, тогда интервью
// не передаются на оценку.
func NewHandler(cfg Config, source conversation.QuestionSource, handoff conversation.Handoff, logger *zap.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Content == nil {
		cfg.Content = config.DefaultContent()
	}
	if cfg.InterviewPath == "" {
		cfg.InterviewPath = "/interview"
	}
	if cfg.FeedbackPath == "" {
		cfg.FeedbackPath = "/feedback"
	}
	return &Handler{
		cfg:     cfg,
		source:  source,
		handoff: handoff,
		logger:  logger,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		sessions: make(map[string]*Session),
	}
}

// StartCleanup периодически закрывает сессии без активности дольше SessionTTL
func (h *Handler) StartCleanup(ctx context.Context, interval time.Duration) {
	if h.cfg.SessionTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.cleanupInactiveSessions()
			}
		}
	}()
}

func (h *Handler) cleanupInactiveSessions() {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()

	cutoff := time.Now().Add(-h.cfg.SessionTTL)
	for id, sess := range h.sessions {
		if sess.LastActivity().Before(cutoff) {
			h.logger.Info("закрыта неактивная сессия", zap.String("session_id", id), zap.String("kind", string(sess.Kind)))
			sess.conn.Close()
			delete(h.sessions, id)
		}
	}
}

// ActiveSessions возвращает число открытых сессий
func (h *Handler) ActiveSessions() int {
	h.sessionsMutex.RLock()
	defer h.sessionsMutex.RUnlock()
	return len(h.sessions)
}

// CloseAll закрывает все сессии
func (h *Handler) CloseAll() {
	h.sessionsMutex.Lock()
	defer h.sessionsMutex.Unlock()
	for id, sess := range h.sessions {
		sess.conn.Close()
		delete(h.sessions, id)
	}
}

// ServeSetup ведет диалог настройки интервью
func (h *Handler) ServeSetup(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.open(w, r, KindSetup)
	if !ok {
		return
	}
	defer h.close(sess)

	logger := h.logger.With(zap.String("session_id", sess.ID), zap.String("kind", string(KindSetup)))
	c := sess.conn

	var (
		flow *setup.Flow
		out  *remoteOutput
		in   *remoteInput
	)

	err := c.readLoop(func(msg Inbound) {
		sess.touch()

		if flow == nil {
			if msg.Type != TypeHello {
				return
			}
			out = newRemoteOutput(c, h.cfg.Content.Voices)
			var input speech.Input
			if msg.Capture {
				in = newRemoteInput(c)
				input = in
			}
			flow = setup.NewFlow(setup.Config{
				GreetingDelay: h.cfg.GreetingDelay,
				RedirectDelay: h.cfg.RedirectDelay,
			}, setup.NewWizard(setup.MessagesFromContent(h.cfg.Content.Wizard)), out, input,
				&setupObserver{conn: c, interviewPath: h.cfg.InterviewPath}, logger, h.metrics)
			flow.Start()
			return
		}

		switch msg.Type {
		case TypeSpeechEnd:
			out.ended(msg.ID)
		case TypeResult:
			if in != nil {
				in.result(msg.ID, msg.Segments)
			}
		case TypeAnswer:
			flow.Answer(msg.Text)
		case TypeConfirm:
			flow.Confirm()
		case TypeControl:
			switch msg.Action {
			case ActionStartCapture:
				flow.StartCapture()
			case ActionStopCapture:
				flow.StopCapture()
			}
		}
	})
	if err != nil {
		logger.Debug("сессия настройки прервана", zap.Error(err))
	}
	if flow != nil {
		flow.Close()
	}
}

// ServeInterview ведет интервью. Параметры берутся из query: role, techStack, count.
func (h *Handler) ServeInterview(w http.ResponseWriter, r *http.Request) {
	params := setup.ParseQuery(r.URL.Query())

	sess, ok := h.open(w, r, KindInterview)
	if !ok {
		return
	}
	defer h.close(sess)

	logger := h.logger.With(zap.String("session_id", sess.ID), zap.String("role", params.Role))
	c := sess.conn

	var (
		ctrl *conversation.Controller
		out  *remoteOutput
		in   *remoteInput
	)

	err := c.readLoop(func(msg Inbound) {
		sess.touch()

		if ctrl == nil {
			if msg.Type != TypeHello {
				return
			}
			name := msg.UserName
			if name == "" {
				name = defaultUserName
			}
			out = newRemoteOutput(c, h.cfg.Content.Voices)
			var input speech.Input
			if msg.Capture {
				in = newRemoteInput(c)
				input = in
			}
			ctrl = conversation.New(conversation.Config{
				UserID:     msg.UserID,
				UserName:   name,
				Setup:      params,
				Greeting:   h.cfg.Content.RenderGreeting(name, params.Role),
				Closing:    h.cfg.Content.Interview.Closing,
				IntroDelay: h.cfg.IntroDelay,
			}, h.source, out, input, h.handoff,
				&interviewObserver{conn: c, feedbackPath: h.cfg.FeedbackPath}, logger, h.metrics)
			ctrl.Start(r.Context())
			return
		}

		switch msg.Type {
		case TypeSpeechEnd:
			out.ended(msg.ID)
		case TypeResult:
			if in != nil {
				in.result(msg.ID, msg.Segments)
			}
		case TypeControl:
			switch msg.Action {
			case ActionStartCapture:
				ctrl.StartCapture()
			case ActionStopCapture:
				ctrl.StopCapture()
			case ActionNext:
				ctrl.Advance()
			case ActionHome:
				ctrl.Close()
				c.push(Outbound{Type: TypeRedirect, URL: "/"})
			}
		}
	})
	if err != nil {
		logger.Debug("сессия интервью прервана", zap.Error(err))
	}
	if ctrl != nil {
		ctrl.Close()
	}
}

func (h *Handler) open(w http.ResponseWriter, r *http.Request, kind Kind) (*Session, bool) {
	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("не удалось открыть websocket", zap.String("kind", string(kind)), zap.Error(err))
		return nil, false
	}

	sess := &Session{
		ID:           uuid.NewString(),
		Kind:         kind,
		conn:         newConn(ws, h.logger),
		lastActivity: time.Now(),
	}

	h.sessionsMutex.Lock()
	h.sessions[sess.ID] = sess
	h.sessionsMutex.Unlock()

	h.logger.Info("сессия открыта", zap.String("session_id", sess.ID), zap.String("kind", string(kind)))
	return sess, true
}

func (h *Handler) close(sess *Session) {
	sess.conn.Close()
	sess.conn.wait()

	h.sessionsMutex.Lock()
	delete(h.sessions, sess.ID)
	h.sessionsMutex.Unlock()

	h.logger.Info("сессия закрыта", zap.String("session_id", sess.ID), zap.String("kind", string(sess.Kind)))
}

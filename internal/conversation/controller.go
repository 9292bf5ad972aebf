package conversation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
	"mock-interview/internal/speech"
)

const defaultClosing = "Thank you for completing the interview. Good luck!"

// Config задает параметры одного интервью
type Config struct {
	UserID     string
	UserName   string
	Setup      domain.Setup
	Greeting   string // если пусто, строится из UserName и Setup.Role
	Closing    string
	IntroDelay time.Duration
}

// Controller ведет интервью: получает вопросы, задает их голосом, слушает
// ответы и по завершении передает расшифровку на оценку.
//
// Все переходы выполняются последовательно через mailbox; поля состояния
// читаются и меняются только внутри событий.
type Controller struct {
	cfg      Config
	source   QuestionSource
	out      speech.Output
	in       speech.Input
	handoff  Handoff
	observer Observer
	logger   *zap.Logger
	metrics  *metrics.Metrics

	box mailbox

	started    bool
	closed     bool
	ctx        context.Context
	cancel     context.CancelFunc
	introTimer *time.Timer
	startedAt  time.Time

	state      State
	questions  []string
	index      int
	transcript transcriptBuffer
	turns      []domain.Turn
	utterance  uint64
	speaking   bool
	capturing  bool

	viewMu sync.RWMutex
	view   Snapshot
}

// New создает контроллер. in может быть nil - тогда захват речи недоступен
// и контроллер не переходит в Listening.
func New(cfg Config, source QuestionSource, out speech.Output, in speech.Input, handoff Handoff, observer Observer, logger *zap.Logger, m *metrics.Metrics) *Controller {
	if cfg.Closing == "" {
		cfg.Closing = defaultClosing
	}
	if cfg.Greeting == "" {
		cfg.Greeting = fmt.Sprintf("Hello %s. I'm ready to interview you for the %s position. Let's begin.", cfg.UserName, cfg.Setup.Role)
	}
	if observer == nil {
		observer = NopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		cfg:      cfg,
		source:   source,
		out:      out,
		in:       in,
		handoff:  handoff,
		observer: observer,
		logger:   logger,
		metrics:  m,
		state:    StateFetching,
	}
	c.view.State = StateFetching

	if in != nil {
		in.OnResult(func(segments []speech.Segment) {
			c.do(func() { c.onRecognition(segments) })
		})
	}
	return c
}

// Start запускает интервью с состояния Fetching. Повторный вызов ничего не делает.
func (c *Controller) Start(ctx context.Context) {
	c.do(func() {
		if c.started {
			return
		}
		c.started = true
		c.ctx, c.cancel = context.WithCancel(ctx)
		c.startedAt = time.Now()
		c.metrics.IncrementInterviewsStarted()
		c.enterFetching()
	})
}

// StartCapture включает микрофон вручную (повторный ответ или ответ,
// не дожидаясь конца вопроса).
func (c *Controller) StartCapture() {
	c.do(func() {
		switch c.state {
		case StateAsking, StateProcessing:
			c.startCapture()
		default:
			c.logger.Debug("включение микрофона проигнорировано", zap.String("state", string(c.state)))
		}
	})
}

// StopCapture останавливает захват ответа: Listening → Processing
func (c *Controller) StopCapture() {
	c.do(func() {
		if c.state != StateListening {
			return
		}
		c.stopCapture()
		c.setState(StateProcessing)
	})
}

// Advance переходит к следующему вопросу или завершает интервью.
// Из Finished ничего не делает.
func (c *Controller) Advance() {
	c.do(func() {
		switch c.state {
		case StateAsking, StateListening, StateProcessing:
		case StateFinished:
			c.logger.Debug("интервью уже завершено, переход проигнорирован")
			return
		default:
			c.logger.Debug("переход к следующему вопросу недоступен", zap.String("state", string(c.state)))
			return
		}

		if c.state == StateListening {
			c.stopCapture()
			c.setState(StateProcessing)
		}

		c.turns = append(c.turns, domain.Turn{
			Question: c.questions[c.index],
			Answer:   c.transcript.String(),
		})

		if c.index < len(c.questions)-1 {
			c.index++
			c.transcript.Reset()
			c.publishTranscript()
			c.enterAsking()
			return
		}
		c.enterFinished()
	})
}

// Close освобождает речь и микрофон. После Close события игнорируются.
func (c *Controller) Close() {
	c.do(func() {
		if c.introTimer != nil {
			c.introTimer.Stop()
		}
		if c.speaking {
			c.out.Cancel()
			c.utterance++
			c.setSpeaking(false)
		}
		c.stopCapture()
		if c.cancel != nil {
			c.cancel()
		}
		c.closed = true
	})
}

// Snapshot возвращает текущее состояние. Безопасен для вызова из любой горутины.
func (c *Controller) Snapshot() Snapshot {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()
	return c.view
}

// State возвращает текущее состояние разговора
func (c *Controller) State() State {
	return c.Snapshot().State
}

// Turns возвращает собранные ответы
func (c *Controller) Turns() []domain.Turn {
	done := make(chan []domain.Turn, 1)
	c.box.post(func() {
		done <- append([]domain.Turn(nil), c.turns...)
	})
	return <-done
}

func (c *Controller) do(fn func()) {
	c.box.post(func() {
		if c.closed {
			return
		}
		fn()
	})
}

func (c *Controller) enterFetching() {
	c.setState(StateFetching)

	setup := c.cfg.Setup
	if setup.Role == "" || setup.TechStack == "" {
		c.logger.Error("не заданы роль или стек, вопросы не запрошены")
		return
	}
	setup.Count = setup.QuestionCount()

	ctx := c.ctx
	go func() {
		questions, err := c.source.Questions(ctx, setup)
		c.do(func() { c.onQuestions(questions, err) })
	}()
}

func (c *Controller) onQuestions(questions []string, err error) {
	if c.state != StateFetching {
		return
	}
	if err != nil {
		c.logger.Error("не удалось получить вопросы", zap.Error(err))
		return
	}
	if len(questions) == 0 {
		c.logger.Error("вопросы не сгенерированы")
		return
	}

	c.questions = append([]string(nil), questions...)
	c.logger.Info("вопросы получены", zap.Int("count", len(c.questions)))
	c.enterIntro()
}

func (c *Controller) enterIntro() {
	c.setState(StateIntro)
	c.introTimer = time.AfterFunc(c.cfg.IntroDelay, func() {
		c.do(c.greet)
	})
}

func (c *Controller) greet() {
	if c.state != StateIntro {
		return
	}
	c.speak(c.cfg.Greeting, func() {
		if c.state == StateIntro {
			c.enterAsking()
		}
	})
}

func (c *Controller) enterAsking() {
	c.setState(StateAsking)

	index := c.index
	question := c.questions[index]
	c.metrics.IncrementQuestionsAsked()
	c.observer.QuestionChanged(index, len(c.questions), question)

	c.speak(question, func() {
		if c.state == StateAsking && c.index == index {
			c.startCapture()
		}
	})
}

func (c *Controller) enterFinished() {
	c.setState(StateFinished)
	c.metrics.IncrementInterviewsCompleted()
	c.speak(c.cfg.Closing, nil)

	if c.handoff == nil {
		return
	}

	submission := domain.Submission{
		UserID:     c.cfg.UserID,
		Role:       c.cfg.Setup.Role,
		TechStack:  c.cfg.Setup.TechStack,
		Transcript: append([]domain.Turn(nil), c.turns...),
		Duration:   int(time.Since(c.startedAt).Seconds()),
	}
	ctx := context.WithoutCancel(c.ctx)
	go func() {
		interviewID, err := c.handoff.Submit(ctx, submission)
		if err != nil {
			c.logger.Error("не удалось передать интервью на оценку", zap.Error(err))
		}
		c.box.post(func() { c.observer.Completed(interviewID, err) })
	}()
}

// startCapture включает захват. Без движка распознавания ничего не делает.
func (c *Controller) startCapture() {
	if c.in == nil {
		c.logger.Debug("распознавание речи недоступно")
		return
	}
	if c.speaking {
		c.out.Cancel()
		c.utterance++
		c.setSpeaking(false)
	}

	c.transcript.Reset()
	c.publishTranscript()
	c.setState(StateListening)

	if err := c.in.Start(); err != nil {
		c.logger.Error("не удалось запустить распознавание", zap.Error(err))
		return
	}
	c.capturing = true
}

func (c *Controller) stopCapture() {
	if c.in == nil || !c.capturing {
		return
	}
	c.capturing = false
	if err := c.in.Stop(); err != nil {
		c.logger.Error("не удалось остановить распознавание", zap.Error(err))
	}
}

func (c *Controller) onRecognition(segments []speech.Segment) {
	if c.state != StateListening {
		return
	}
	if c.transcript.Update(segments) {
		c.publishTranscript()
	}
}

// speak произносит текст; then выполняется как отдельное событие, если
// высказывание не было вытеснено следующим.
func (c *Controller) speak(text string, then func()) {
	c.stopCapture()
	if c.speaking {
		c.out.Cancel()
	}

	c.utterance++
	id := c.utterance
	c.setSpeaking(true)

	c.out.Speak(text, func() {
		c.do(func() {
			if id != c.utterance {
				return
			}
			c.setSpeaking(false)
			if then != nil {
				then()
			}
		})
	})
}

func (c *Controller) setState(state State) {
	c.viewMu.Lock()
	c.state = state
	c.view.State = state
	c.view.Index = c.index
	c.view.Total = len(c.questions)
	if len(c.questions) > 0 {
		c.view.Question = c.questions[c.index]
	}
	c.viewMu.Unlock()

	c.logger.Debug("состояние интервью", zap.String("state", string(state)), zap.Int("index", c.index))
	c.observer.StateChanged(state)
}

func (c *Controller) setSpeaking(speaking bool) {
	c.speaking = speaking
	c.viewMu.Lock()
	c.view.Speaking = speaking
	c.viewMu.Unlock()
	c.observer.SpeakingChanged(speaking)
}

func (c *Controller) publishTranscript() {
	text := c.transcript.String()
	c.viewMu.Lock()
	c.view.Transcript = text
	c.viewMu.Unlock()
	c.observer.TranscriptChanged(text)
}

package setup

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"mock-interview/internal/domain"
	"mock-interview/internal/metrics"
	"mock-interview/internal/speech"
)

// Speaker - автор реплики в диалоге настройки
type Speaker string

const (
	SpeakerAI   Speaker = "ai"
	SpeakerUser Speaker = "user"
)

// Observer получает изменения диалога настройки
type Observer interface {
	Message(from Speaker, text string)
	DraftChanged(text string)
	CheckpointChanged(checkpoint Checkpoint)
	Redirect(setup domain.Setup)
}

// Config задает задержки диалога
type Config struct {
	GreetingDelay time.Duration
	RedirectDelay time.Duration
}

// Flow ведет диалог настройки: озвучивает реплики мастера, принимает
// напечатанные или надиктованные ответы и после подтверждения передает
// собранные параметры интервью наблюдателю.
type Flow struct {
	cfg      Config
	wizard   *Wizard
	out      speech.Output
	in       speech.Input
	observer Observer
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu        sync.Mutex
	started   bool
	closed    bool
	capturing bool
	draft     string
	timers    []*time.Timer
}

// NewFlow создает диалог. in может быть nil, тогда доступен только текстовый ввод.
func NewFlow(cfg Config, wizard *Wizard, out speech.Output, in speech.Input, observer Observer, logger *zap.Logger, m *metrics.Metrics) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if observer == nil {
		observer = nopObserver{}
	}
	f := &Flow{
		cfg:      cfg,
		wizard:   wizard,
		out:      out,
		in:       in,
		observer: observer,
		logger:   logger,
		metrics:  m,
	}
	if in != nil {
		in.OnResult(f.onResult)
	}
	return f
}

// Start озвучивает приветствие после задержки
func (f *Flow) Start() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.started || f.closed {
		return
	}
	f.started = true
	f.after(f.cfg.GreetingDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.closed {
			return
		}
		f.say(f.wizard.Greeting())
	})
}

// Answer принимает ответ на текущий шаг
func (f *Flow) Answer(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answer(text)
}

// Confirm отправляет надиктованный черновик как ответ
func (f *Flow) Confirm() {
	f.mu.Lock()
	defer f.mu.Unlock()
	draft := f.draft
	f.draft = ""
	f.answer(draft)
}

// StartCapture включает диктовку ответа. Без движка распознавания ничего не делает.
func (f *Flow) StartCapture() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.in == nil || f.capturing || f.wizard.Done() {
		return
	}
	f.out.Cancel()
	f.draft = ""
	f.notifyDraft()
	if err := f.in.Start(); err != nil {
		f.logger.Error("не удалось запустить распознавание", zap.Error(err))
		return
	}
	f.capturing = true
}

func (f *Flow) StopCapture() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopCapture()
}

// Close останавливает таймеры, речь и захват
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for _, t := range f.timers {
		t.Stop()
	}
	f.stopCapture()
	f.out.Cancel()
}

// Checkpoint возвращает текущий шаг
func (f *Flow) Checkpoint() Checkpoint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wizard.Checkpoint()
}

// Answers возвращает собранные ответы
func (f *Flow) Answers() domain.Setup {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.wizard.Answers()
}

func (f *Flow) answer(text string) {
	text = strings.TrimSpace(text)
	if f.closed || text == "" || f.wizard.Done() {
		return
	}
	f.stopCapture()
	f.observer.Message(SpeakerUser, text)

	reply, advanced := f.wizard.Submit(text)
	if reply != "" {
		f.say(reply)
	}
	if !advanced {
		return
	}
	f.observer.CheckpointChanged(f.wizard.Checkpoint())

	if !f.wizard.Done() {
		return
	}
	f.metrics.IncrementSetupsCompleted()
	answers := f.wizard.Answers()
	f.logger.Info("настройка интервью завершена",
		zap.String("role", answers.Role),
		zap.String("tech_stack", answers.TechStack),
		zap.Int("count", answers.Count))

	f.after(f.cfg.RedirectDelay, func() {
		f.mu.Lock()
		closed := f.closed
		f.mu.Unlock()
		if !closed {
			f.observer.Redirect(answers)
		}
	})
}

func (f *Flow) say(text string) {
	f.out.Cancel()
	f.out.Speak(text, nil)
	f.observer.Message(SpeakerAI, text)
}

func (f *Flow) stopCapture() {
	if !f.capturing {
		return
	}
	f.capturing = false
	if err := f.in.Stop(); err != nil {
		f.logger.Error("не удалось остановить распознавание", zap.Error(err))
	}
}

func (f *Flow) onResult(segments []speech.Segment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.capturing {
		return
	}
	f.draft = speech.JoinSegments(segments)
	f.notifyDraft()
}

func (f *Flow) notifyDraft() {
	f.observer.DraftChanged(f.draft)
}

func (f *Flow) after(d time.Duration, fn func()) {
	f.timers = append(f.timers, time.AfterFunc(d, fn))
}

type nopObserver struct{}

func (nopObserver) Message(Speaker, string)      {}
func (nopObserver) DraftChanged(string)          {}
func (nopObserver) CheckpointChanged(Checkpoint) {}
func (nopObserver) Redirect(domain.Setup)        {}

package speech

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Console выводит реплики интервьюера в терминал.
// Печать мгновенна, поэтому высказывание завершается сразу.
type Console struct {
	mu     sync.Mutex
	w      io.Writer
	prefix string
}

// NewConsole создает консольный вывод речи
func NewConsole(w io.Writer, prefix string) *Console {
	return &Console{w: w, prefix: prefix}
}

func (c *Console) Speak(text string, onEnd func()) {
	c.mu.Lock()
	fmt.Fprintf(c.w, "%s%s\n", c.prefix, text)
	c.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
}

func (c *Console) Cancel() {}

// LineInput превращает введенные строки в финальные сегменты распознавания.
// Строки, поданные вне сессии захвата, отбрасываются.
type LineInput struct {
	mu       sync.Mutex
	active   bool
	segments []Segment
	onResult func([]Segment)
}

// NewLineInput создает построчный ввод
func NewLineInput() *LineInput {
	return &LineInput{}
}

func (l *LineInput) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = true
	l.segments = nil
	return nil
}

func (l *LineInput) Stop() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	return nil
}

func (l *LineInput) OnResult(fn func([]Segment)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onResult = fn
}

// Active сообщает, идет ли сейчас захват
func (l *LineInput) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Feed добавляет строку как распознанный фрагмент. Возвращает false, если
// захват не запущен.
func (l *LineInput) Feed(line string) bool {
	line = strings.TrimSpace(line)

	l.mu.Lock()
	if !l.active || line == "" {
		l.mu.Unlock()
		return false
	}
	text := line
	if len(l.segments) > 0 {
		text = " " + line
	}
	l.segments = append(l.segments, Segment{Text: text, Final: true})
	snapshot := append([]Segment(nil), l.segments...)
	fn := l.onResult
	l.mu.Unlock()

	if fn != nil {
		fn(snapshot)
	}
	return true
}

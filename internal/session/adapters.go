package session

import (
	"sync"

	"mock-interview/internal/speech"
)

// remoteOutput озвучивает текст на стороне клиента. Клиент сообщает
// о конце высказывания сообщением speech_end с тем же id.
type remoteOutput struct {
	conn   *conn
	voices []string

	mu      sync.Mutex
	next    uint64
	pending map[uint64]func()
}

func newRemoteOutput(c *conn, voices []string) *remoteOutput {
	return &remoteOutput{
		conn:    c,
		voices:  voices,
		pending: make(map[uint64]func()),
	}
}

func (o *remoteOutput) Speak(text string, onEnd func()) {
	o.mu.Lock()
	o.next++
	id := o.next
	if onEnd != nil {
		o.pending[id] = onEnd
	}
	o.mu.Unlock()

	o.conn.push(Outbound{Type: TypeSpeak, ID: id, Text: text, Voices: o.voices})
}

// Cancel прерывает текущее высказывание. onEnd отмененных высказываний
// не вызывается.
func (o *remoteOutput) Cancel() {
	o.mu.Lock()
	clear(o.pending)
	o.mu.Unlock()

	o.conn.push(Outbound{Type: TypeCancelSpeech})
}

func (o *remoteOutput) ended(id uint64) {
	o.mu.Lock()
	fn, ok := o.pending[id]
	delete(o.pending, id)
	o.mu.Unlock()

	if ok {
		fn()
	}
}

// remoteInput получает распознанный текст от клиента. Результаты вне
// текущей сессии захвата отбрасываются.
type remoteInput struct {
	conn *conn

	mu       sync.Mutex
	active   bool
	capture  uint64
	onResult func([]speech.Segment)
}

func newRemoteInput(c *conn) *remoteInput {
	return &remoteInput{conn: c}
}

func (in *remoteInput) Start() error {
	in.mu.Lock()
	in.capture++
	in.active = true
	id := in.capture
	in.mu.Unlock()

	in.conn.push(Outbound{Type: TypeCapture, ID: id, Active: true})
	return nil
}

func (in *remoteInput) Stop() error {
	in.mu.Lock()
	in.active = false
	id := in.capture
	in.mu.Unlock()

	in.conn.push(Outbound{Type: TypeCapture, ID: id})
	return nil
}

func (in *remoteInput) OnResult(fn func([]speech.Segment)) {
	in.mu.Lock()
	in.onResult = fn
	in.mu.Unlock()
}

func (in *remoteInput) result(id uint64, segments []speech.Segment) {
	in.mu.Lock()
	if !in.active || id != in.capture || in.onResult == nil {
		in.mu.Unlock()
		return
	}
	fn := in.onResult
	in.mu.Unlock()

	fn(segments)
}

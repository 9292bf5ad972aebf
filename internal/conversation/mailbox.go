package conversation

import "sync"

// mailbox выполняет события строго по одному.
//
// Событие, отправленное во время обработки другого (в том числе из самого
// обработчика), ставится в очередь и выполняется после него той горутиной,
// которая уже разбирает очередь.
type mailbox struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

func (m *mailbox) post(fn func()) {
	m.mu.Lock()
	m.queue = append(m.queue, fn)
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true

	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue[0] = nil
		m.queue = m.queue[1:]
		m.mu.Unlock()

		next()

		m.mu.Lock()
	}
	m.running = false
	m.mu.Unlock()
}

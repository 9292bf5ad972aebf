package metrics

import (
	"sync"
	"time"
)

// Metrics - счетчики сервиса. Методы безопасны для nil-получателя,
// чтобы компоненты могли работать без метрик.
type Metrics struct {
	mu                  sync.RWMutex
	setupsCompleted     int64
	interviewsStarted   int64
	interviewsCompleted int64
	questionsAsked      int64
	fallbacksUsed       int64
	feedbackGenerated   int64
	apiCallsTotal       int64
	apiCallsSuccessful  int64
	lastUpdateTime      time.Time
}

// Snapshot - копия счетчиков на момент вызова
type Snapshot struct {
	SetupsCompleted     int64     `json:"setupsCompleted"`
	InterviewsStarted   int64     `json:"interviewsStarted"`
	InterviewsCompleted int64     `json:"interviewsCompleted"`
	QuestionsAsked      int64     `json:"questionsAsked"`
	FallbacksUsed       int64     `json:"fallbacksUsed"`
	FeedbackGenerated   int64     `json:"feedbackGenerated"`
	APICallsTotal       int64     `json:"apiCallsTotal"`
	APICallsSuccessful  int64     `json:"apiCallsSuccessful"`
	LastUpdateTime      time.Time `json:"lastUpdateTime"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		lastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementSetupsCompleted() {
	if m == nil {
		return
	}
	m.add(&m.setupsCompleted)
}

func (m *Metrics) IncrementInterviewsStarted() {
	if m == nil {
		return
	}
	m.add(&m.interviewsStarted)
}

func (m *Metrics) IncrementInterviewsCompleted() {
	if m == nil {
		return
	}
	m.add(&m.interviewsCompleted)
}

func (m *Metrics) IncrementQuestionsAsked() {
	if m == nil {
		return
	}
	m.add(&m.questionsAsked)
}

func (m *Metrics) IncrementFallbacksUsed() {
	if m == nil {
		return
	}
	m.add(&m.fallbacksUsed)
}

func (m *Metrics) IncrementFeedbackGenerated() {
	if m == nil {
		return
	}
	m.add(&m.feedbackGenerated)
}

func (m *Metrics) IncrementAPICall(success bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCallsTotal++
	if success {
		m.apiCallsSuccessful++
	}
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SetupsCompleted:     m.setupsCompleted,
		InterviewsStarted:   m.interviewsStarted,
		InterviewsCompleted: m.interviewsCompleted,
		QuestionsAsked:      m.questionsAsked,
		FallbacksUsed:       m.fallbacksUsed,
		FeedbackGenerated:   m.feedbackGenerated,
		APICallsTotal:       m.apiCallsTotal,
		APICallsSuccessful:  m.apiCallsSuccessful,
		LastUpdateTime:      m.lastUpdateTime,
	}
}

func (m *Metrics) add(counter *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter++
	m.lastUpdateTime = time.Now()
}

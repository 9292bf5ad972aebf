package telegram

import (
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"mock-interview/internal/conversation"
	"mock-interview/internal/setup"
	"mock-interview/internal/speech"
)

// Bot представляет Telegram бота
type Bot struct {
	baseURL     string
	pollTimeout int
	client      *http.Client
	logger      *zap.Logger
}

// Update представляет обновление от Telegram
type Update struct {
	UpdateID int      `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message представляет сообщение в Telegram
type Message struct {
	MessageID int    `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      *Chat  `json:"chat"`
	Text      string `json:"text,omitempty"`
}

// User представляет пользователя Telegram
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// Chat представляет чат в Telegram
type Chat struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
	Type      string `json:"type"`
}

// SendMessageRequest представляет запрос на отправку сообщения
type SendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

// GetUpdatesResponse представляет ответ от getUpdates
type GetUpdatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description,omitempty"`
}

// SendMessageResponse представляет ответ от sendMessage
type SendMessageResponse struct {
	OK          bool     `json:"ok"`
	Result      *Message `json:"result,omitempty"`
	Description string   `json:"description,omitempty"`
}

// UserSession - состояние чата: мастер настройки, затем интервью.
// Поля защищены mu; вызовы Flow и Controller выполняются без mu.
type UserSession struct {
	UserID int64
	ChatID int64
	Name   string

	mu           sync.Mutex
	State        SessionState
	Flow         *setup.Flow
	Controller   *conversation.Controller
	Input        *speech.LineInput
	InterviewID  string
	LastActivity time.Time
}

// SessionState представляет состояние сессии
type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateSetup     SessionState = "setup"
	StateInterview SessionState = "interview"
	StateCompleted SessionState = "completed"
)

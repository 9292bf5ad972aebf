package session

import (
	"mock-interview/internal/domain"
	"mock-interview/internal/speech"
)

// Типы сообщений сервер → клиент
const (
	TypeSpeak        = "speak"
	TypeCancelSpeech = "cancel_speech"
	TypeCapture      = "capture"
	TypeState        = "state"
	TypeQuestion     = "question"
	TypeTranscript   = "transcript"
	TypeSpeaking     = "speaking"
	TypeMessage      = "message"
	TypeDraft        = "draft"
	TypeCheckpoint   = "checkpoint"
	TypeRedirect     = "redirect"
	TypeCompleted    = "completed"
	TypeError        = "error"
)

// Типы сообщений клиент → сервер
const (
	TypeHello     = "hello"
	TypeSpeechEnd = "speech_end"
	TypeResult    = "result"
	TypeControl   = "control"
	TypeAnswer    = "answer"
	TypeConfirm   = "confirm"
)

// Команды control
const (
	ActionStartCapture = "start_capture"
	ActionStopCapture  = "stop_capture"
	ActionNext         = "next"
	ActionHome         = "home"
)

// Outbound - сообщение клиенту
type Outbound struct {
	Type string `json:"type"`
	ID   uint64 `json:"id,omitempty"`

	Text       string        `json:"text,omitempty"`
	Voices     []string      `json:"voices,omitempty"`
	Active     bool          `json:"active,omitempty"`
	State      string        `json:"state,omitempty"`
	Index      int           `json:"index,omitempty"`
	Total      int           `json:"total,omitempty"`
	From       string        `json:"from,omitempty"`
	Checkpoint string        `json:"checkpoint,omitempty"`
	URL        string        `json:"url,omitempty"`
	Setup      *domain.Setup `json:"setup,omitempty"`

	InterviewID string `json:"interviewId,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Inbound - сообщение от клиента
type Inbound struct {
	Type string `json:"type"`
	ID   uint64 `json:"id,omitempty"`

	UserID   string           `json:"userId,omitempty"`
	UserName string           `json:"userName,omitempty"`
	Capture  bool             `json:"capture,omitempty"`
	Segments []speech.Segment `json:"segments,omitempty"`
	Action   string           `json:"action,omitempty"`
	Text     string           `json:"text,omitempty"`
}

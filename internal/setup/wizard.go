package setup

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"mock-interview/internal/config"
	"mock-interview/internal/domain"
)

const (
	MinQuestions = 1
	MaxQuestions = 20
)

var ErrInvalidCount = errors.New("количество вопросов должно быть числом от 1 до 20")

// Checkpoint - шаг мастера настройки
type Checkpoint string

const (
	CheckpointRole    Checkpoint = "role"
	CheckpointTech    Checkpoint = "tech"
	CheckpointCount   Checkpoint = "count"
	CheckpointConfirm Checkpoint = "confirm"
)

// Messages - реплики мастера. Поддерживаются подстановки {role} и {count}.
type Messages struct {
	Greeting     string
	AskTech      string
	AskCount     string
	InvalidCount string
	Confirm      string
}

// DefaultMessages возвращает стандартные реплики
func DefaultMessages() Messages {
	return Messages{
		Greeting:     "Hi! I'm your AI Interviewer. To get started, please tell me what role you are interviewing for?",
		AskTech:      "Great! A {role} role. What specific tech stack or topics should I focus on?",
		AskCount:     "Understood. How many questions would you like me to ask?",
		InvalidCount: "Please say a valid number between 1 and 20.",
		Confirm:      "Perfect. Starting your interview for {role} with {count} questions now.",
	}
}

// Wizard собирает роль, стек и количество вопросов по одному ответу на шаг
type Wizard struct {
	messages   Messages
	checkpoint Checkpoint
	answers    domain.Setup
}

// MessagesFromContent берет реплики из текстов интервью
func MessagesFromContent(w config.WizardContent) Messages {
	return Messages{
		Greeting:     w.Greeting,
		AskTech:      w.AskTech,
		AskCount:     w.AskCount,
		InvalidCount: w.InvalidCount,
		Confirm:      w.Confirm,
	}
}

// NewWizard создает мастер; пустые реплики заменяются стандартными
func NewWizard(messages Messages) *Wizard {
	defaults := DefaultMessages()
	if messages.Greeting == "" {
		messages.Greeting = defaults.Greeting
	}
	if messages.AskTech == "" {
		messages.AskTech = defaults.AskTech
	}
	if messages.AskCount == "" {
		messages.AskCount = defaults.AskCount
	}
	if messages.InvalidCount == "" {
		messages.InvalidCount = defaults.InvalidCount
	}
	if messages.Confirm == "" {
		messages.Confirm = defaults.Confirm
	}
	return &Wizard{messages: messages, checkpoint: CheckpointRole}
}

func (w *Wizard) Greeting() string {
	return w.messages.Greeting
}

func (w *Wizard) Checkpoint() Checkpoint {
	return w.checkpoint
}

// Answers возвращает собранные ответы
func (w *Wizard) Answers() domain.Setup {
	return w.answers
}

// Done сообщает, что все поля собраны
func (w *Wizard) Done() bool {
	return w.checkpoint == CheckpointConfirm
}

// Submit принимает ответ на текущий шаг. Возвращает реплику мастера и
// признак перехода к следующему шагу. Пустой ввод и ввод после
// подтверждения игнорируются (пустая реплика).
func (w *Wizard) Submit(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}

	switch w.checkpoint {
	case CheckpointRole:
		w.answers.Role = input
		w.checkpoint = CheckpointTech
		return w.render(w.messages.AskTech), true

	case CheckpointTech:
		w.answers.TechStack = input
		w.checkpoint = CheckpointCount
		return w.render(w.messages.AskCount), true

	case CheckpointCount:
		count, err := ParseCount(input)
		if err != nil {
			return w.render(w.messages.InvalidCount), false
		}
		w.answers.Count = count
		w.checkpoint = CheckpointConfirm
		return w.render(w.messages.Confirm), true
	}

	return "", false
}

func (w *Wizard) render(template string) string {
	count := ""
	if w.answers.Count > 0 {
		count = strconv.Itoa(w.answers.Count)
	}
	return strings.NewReplacer("{role}", w.answers.Role, "{count}", count).Replace(template)
}

// ParseCount извлекает число из произвольной фразы: все нецифровые
// символы отбрасываются ("I want 7 questions" → 7).
func ParseCount(input string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			return r
		}
		return -1
	}, input)

	count, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCount, input)
	}
	if count < MinQuestions || count > MaxQuestions {
		return 0, fmt.Errorf("%w: %d", ErrInvalidCount, count)
	}
	return count, nil
}

// Query кодирует ответы в параметры перехода к интервью
func Query(s domain.Setup) url.Values {
	q := url.Values{}
	q.Set("role", s.Role)
	q.Set("techStack", s.TechStack)
	q.Set("count", strconv.Itoa(s.QuestionCount()))
	return q
}

// RedirectURL строит адрес страницы интервью
func RedirectURL(base string, s domain.Setup) string {
	return base + "?" + Query(s).Encode()
}

// ParseQuery читает параметры интервью. Отсутствующее или нечисловое
// количество дает значение по умолчанию.
func ParseQuery(q url.Values) domain.Setup {
	s := domain.Setup{
		Role:      strings.TrimSpace(q.Get("role")),
		TechStack: strings.TrimSpace(q.Get("techStack")),
	}
	if count, err := strconv.Atoi(q.Get("count")); err == nil && count > 0 {
		s.Count = count
	}
	if s.Count == 0 {
		s.Count = domain.DefaultQuestionCount
	}
	return s
}

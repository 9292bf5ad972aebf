package telegram

import (
	"context"
	"fmt"

	"mock-interview/internal/conversation"
	"mock-interview/internal/domain"
	"mock-interview/internal/setup"
)

// chatOutput «произносит» реплики сообщениями в чат. Отправка синхронная,
// поэтому высказывание заканчивается сразу после нее.
type chatOutput struct {
	handler *Handler
	chatID  int64
}

func (o *chatOutput) Speak(text string, onEnd func()) {
	o.handler.send(o.chatID, "🎙 "+text)
	if onEnd != nil {
		onEnd()
	}
}

func (o *chatOutput) Cancel() {}

// setupObserver запускает интервью, когда мастер настройки завершен
type setupObserver struct {
	ctx     context.Context
	handler *Handler
	session *UserSession
}

func (o *setupObserver) Message(setup.Speaker, string)      {}
func (o *setupObserver) DraftChanged(string)                {}
func (o *setupObserver) CheckpointChanged(setup.Checkpoint) {}

func (o *setupObserver) Redirect(params domain.Setup) {
	o.handler.startInterview(o.ctx, o.session, params)
}

// interviewObserver сообщает в чат о ходе интервью
type interviewObserver struct {
	conversation.NopObserver
	handler *Handler
	session *UserSession
}

func (o *interviewObserver) QuestionChanged(index, total int, _ string) {
	o.handler.send(o.session.ChatID, fmt.Sprintf("❓ Вопрос %d/%d", index+1, total))
}

func (o *interviewObserver) StateChanged(state conversation.State) {
	if state != conversation.StateFinished {
		return
	}
	o.session.mu.Lock()
	o.session.State = StateCompleted
	o.session.Input = nil
	o.session.mu.Unlock()

	if o.handler.handoff != nil {
		o.handler.send(o.session.ChatID, "🎉 Интервью завершено! Готовлю оценку ваших ответов...")
	}
}

func (o *interviewObserver) Completed(interviewID string, err error) {
	if err != nil {
		o.handler.send(o.session.ChatID, "❌ Не удалось сохранить интервью.")
		return
	}

	o.session.mu.Lock()
	o.session.InterviewID = interviewID
	o.session.mu.Unlock()

	if o.handler.feedback == nil {
		return
	}
	go o.handler.sendReport(context.Background(), o.session.ChatID, interviewID)
}

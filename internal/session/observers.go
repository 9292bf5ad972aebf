package session

import (
	"mock-interview/internal/conversation"
	"mock-interview/internal/domain"
	"mock-interview/internal/setup"
)

// setupObserver пересылает изменения диалога настройки клиенту
type setupObserver struct {
	conn          *conn
	interviewPath string
}

func (o *setupObserver) Message(from setup.Speaker, text string) {
	o.conn.push(Outbound{Type: TypeMessage, From: string(from), Text: text})
}

func (o *setupObserver) DraftChanged(text string) {
	o.conn.push(Outbound{Type: TypeDraft, Text: text})
}

func (o *setupObserver) CheckpointChanged(checkpoint setup.Checkpoint) {
	o.conn.push(Outbound{Type: TypeCheckpoint, Checkpoint: string(checkpoint)})
}

func (o *setupObserver) Redirect(s domain.Setup) {
	o.conn.push(Outbound{
		Type:  TypeRedirect,
		URL:   setup.RedirectURL(o.interviewPath, s),
		Setup: &s,
	})
}

// interviewObserver пересылает изменения интервью клиенту
type interviewObserver struct {
	conn         *conn
	feedbackPath string
}

func (o *interviewObserver) StateChanged(state conversation.State) {
	o.conn.push(Outbound{Type: TypeState, State: string(state)})
}

func (o *interviewObserver) QuestionChanged(index, total int, question string) {
	o.conn.push(Outbound{Type: TypeQuestion, Index: index, Total: total, Text: question})
}

func (o *interviewObserver) TranscriptChanged(text string) {
	o.conn.push(Outbound{Type: TypeTranscript, Text: text})
}

func (o *interviewObserver) SpeakingChanged(speaking bool) {
	o.conn.push(Outbound{Type: TypeSpeaking, Active: speaking})
}

func (o *interviewObserver) Completed(interviewID string, err error) {
	msg := Outbound{Type: TypeCompleted, InterviewID: interviewID}
	if err != nil {
		msg.Error = "Failed to save interview"
	} else if interviewID != "" {
		msg.URL = o.feedbackPath + "/" + interviewID
	}
	o.conn.push(msg)
}

package speech

import "strings"

// Output - синтез речи.
//
// Новое высказывание отменяет текущее: одновременно звучит не больше одного.
// onEnd вызывается из любой горутины, когда высказывание закончено; для
// отмененного высказывания адаптер может вызвать его или не вызвать.
type Output interface {
	Speak(text string, onEnd func())
	Cancel()
}

// Input - распознавание речи. Одна сессия захвата между Start и Stop.
type Input interface {
	Start() error
	Stop() error
	// OnResult регистрирует обработчик обновлений распознавания.
	// Каждое обновление содержит все сегменты текущей сессии захвата.
	OnResult(fn func(segments []Segment))
}

// Segment - фрагмент распознанного текста
type Segment struct {
	Text  string `json:"text"`
	Final bool   `json:"final"`
}

// JoinSegments склеивает промежуточные и финальные сегменты в один текст
func JoinSegments(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

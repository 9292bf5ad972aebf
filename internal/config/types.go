package config

import "strings"

// Content - тексты интервью: реплики, шаблоны вопросов и голоса
type Content struct {
	Interview InterviewContent `yaml:"interview"`
	Wizard    WizardContent    `yaml:"wizard"`
	Questions QuestionsContent `yaml:"questions"`
	Voices    []string         `yaml:"preferred_voices"`
}

// InterviewContent содержит реплики интервьюера. В приветствии
// поддерживаются подстановки {name} и {role}.
type InterviewContent struct {
	Greeting string `yaml:"greeting"`
	Closing  string `yaml:"closing"`
}

// WizardContent содержит реплики мастера настройки
type WizardContent struct {
	Greeting     string `yaml:"greeting"`
	AskTech      string `yaml:"ask_tech"`
	AskCount     string `yaml:"ask_count"`
	InvalidCount string `yaml:"invalid_count"`
	Confirm      string `yaml:"confirm"`
}

// QuestionsContent содержит шаблоны вопросов ({role}, {techStack})
// и запасной список на случай сбоя генерации
type QuestionsContent struct {
	Manual   []string `yaml:"manual"`
	Fallback []string `yaml:"fallback"`
}

// RenderGreeting подставляет имя и роль в приветствие
func (c *Content) RenderGreeting(name, role string) string {
	return strings.NewReplacer("{name}", name, "{role}", role).Replace(c.Interview.Greeting)
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// LoadContent загружает тексты интервью из YAML файла. Пустой путь
// означает встроенные тексты.
func LoadContent(fs afero.Fs, filename string) (*Content, error) {
	if filename == "" {
		return DefaultContent(), nil
	}

	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
	}

	return ParseContent(data)
}

// ParseContent разбирает YAML. Незаполненные разделы берутся из встроенных текстов.
func ParseContent(data []byte) (*Content, error) {
	var content Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	applyContentDefaults(&content)

	// Валидация конфигурации
	if err := validateContent(&content); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &content, nil
}

// DefaultContent возвращает встроенные тексты
func DefaultContent() *Content {
	return &Content{
		Interview: InterviewContent{
			Greeting: "Hello {name}. I'm ready to interview you for the {role} position. Let's begin.",
			Closing:  "Thank you for completing the interview. Good luck!",
		},
		Wizard: WizardContent{
			Greeting:     "Hi! I'm your AI Interviewer. To get started, please tell me what role you are interviewing for?",
			AskTech:      "Great! A {role} role. What specific tech stack or topics should I focus on?",
			AskCount:     "Understood. How many questions would you like me to ask?",
			InvalidCount: "Please say a valid number between 1 and 20.",
			Confirm:      "Perfect. Starting your interview for {role} with {count} questions now.",
		},
		Questions: QuestionsContent{
			Manual: []string{
				"Can you tell me about yourself and your background in {role}?",
				"What are your core strengths and weaknesses as a {role}?",
				"Describe a challenging project you worked on using {techStack}.",
				"How do you handle tight deadlines and pressure?",
				"Explain a complex technical concept related to {techStack} to a non-technical person.",
				"How do you stay updated with the latest trends in {techStack}?",
				"Tell me about a time you had a conflict with a team member and how you resolved it.",
				"What is your preferred workflow or development methodology?",
				"Describe a time you made a mistake in your code and how you fixed it.",
				"Where do you see yourself in the next 5 years in your career?",
			},
			Fallback: []string{
				"Tell me about yourself.",
				"What are your strengths?",
				"What are your weaknesses?",
				"Why do you want this job?",
				"Describe a challenge you faced.",
			},
		},
		Voices: []string{"Google US English", "Samantha"},
	}
}

func applyContentDefaults(c *Content) {
	d := DefaultContent()

	if c.Interview.Greeting == "" {
		c.Interview.Greeting = d.Interview.Greeting
	}
	if c.Interview.Closing == "" {
		c.Interview.Closing = d.Interview.Closing
	}
	if c.Wizard == (WizardContent{}) {
		c.Wizard = d.Wizard
	}
	if len(c.Questions.Manual) == 0 {
		c.Questions.Manual = d.Questions.Manual
	}
	if len(c.Questions.Fallback) == 0 {
		c.Questions.Fallback = d.Questions.Fallback
	}
	if len(c.Voices) == 0 {
		c.Voices = d.Voices
	}
}

// validateContent проверяет корректность текстов
func validateContent(c *Content) error {
	for i, q := range c.Questions.Manual {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("вопрос %d в questions.manual пустой", i+1)
		}
	}

	for i, q := range c.Questions.Fallback {
		if strings.TrimSpace(q) == "" {
			return fmt.Errorf("вопрос %d в questions.fallback пустой", i+1)
		}
	}

	w := c.Wizard
	if w.Greeting == "" || w.AskTech == "" || w.AskCount == "" || w.InvalidCount == "" || w.Confirm == "" {
		return fmt.Errorf("раздел wizard должен содержать все реплики")
	}

	return nil
}

package prompts

import (
	"fmt"
	"strings"
)

// FeedbackSystemPrompt задает роль модели при оценке интервью
const FeedbackSystemPrompt = "You are a senior hiring manager who evaluates mock interviews. You reply with valid JSON only, without markdown or comments."

type assessmentField struct {
	name        string
	description string
}

var assessmentFields = []assessmentField{
	{"totalScore", "number from 0 to 100, overall performance"},
	{"strengths", "array of strings, concrete strengths shown in the answers"},
	{"weaknesses", "array of strings, concrete gaps or weak spots"},
	{"feedback", "string, a short overall summary for the candidate"},
	{"questions", "array with one object per question in the transcript order"},
	{"questions[].question", "string, the question as asked"},
	{"questions[].userAnswer", "string, the candidate's answer as transcribed"},
	{"questions[].score", "number from 0 to 10"},
	{"questions[].feedback", "string, specific feedback on this answer"},
	{"questions[].idealAnswer", "string, an ideal better answer"},
}

// GenerateFeedbackPrompt - промпт для оценки расшифровки интервью.
// transcriptJSON - массив {question, answer}.
func GenerateFeedbackPrompt(role, techStack, transcriptJSON string) string {
	prompt := `Analyze the following interview transcript for a %s position (Tech Stack: %s).

Provide a detailed evaluation including:
- A total score out of 100.
- Key strengths and weaknesses.
- For each question: a score (0-10), specific feedback on the answer, and an ideal better answer.

If an answer is empty, score it 0 and explain what was expected.

FIELDS:
%s
TRANSCRIPT:
%s

ANSWER (JSON only):`

	return fmt.Sprintf(prompt, role, techStack, describeFields(), transcriptJSON)
}

func describeFields() string {
	var builder strings.Builder
	for _, field := range assessmentFields {
		builder.WriteString(fmt.Sprintf("- %s: %s\n", field.name, field.description))
	}
	return builder.String()
}

package prompts

import "fmt"

// GenerateQuestionsPrompt - промпт для генерации вопросов интервью.
// Вопросы зачитываются голосом, поэтому без нумерации и спецсимволов.
func GenerateQuestionsPrompt(role, techStack string, count int) string {
	prompt := `Prepare interview questions for a job interview.

The job role is: %s.
The tech stack used in the job is: %s.
The number of questions needed is: %d.

INSTRUCTIONS:
1. The questions should be concise and conversational, suitable for a voice interview
2. Mix behavioural and technical questions
3. Do not include numbering or prefixes like "Question 1"
4. The questions will be read by a voice assistant, so avoid using "/" or "*" or any special symbols
5. Return ONLY the questions, with no explanation or extra text

Return the output formatted exactly like this:
["Question 1", "Question 2", "Question 3"]`

	return fmt.Sprintf(prompt, role, techStack, count)
}

// QuestionsSystemPrompt задает роль модели при генерации вопросов
const QuestionsSystemPrompt = "You are an experienced technical interviewer. You reply with a JSON array of strings only."

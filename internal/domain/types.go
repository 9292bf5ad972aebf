package domain

// DefaultQuestionCount используется, когда количество вопросов не задано
const DefaultQuestionCount = 5

// Setup описывает параметры интервью, собранные мастером настройки
type Setup struct {
	Role      string `json:"role"`
	TechStack string `json:"techStack"`
	Count     int    `json:"count"`
}

// QuestionCount возвращает количество вопросов с учетом значения по умолчанию
func (s Setup) QuestionCount() int {
	if s.Count <= 0 {
		return DefaultQuestionCount
	}
	return s.Count
}

// Turn представляет один вопрос и ответ кандидата
type Turn struct {
	Question string `json:"question" firestore:"question"`
	Answer   string `json:"answer" firestore:"answer"`
}

// Submission - завершенное интервью, передаваемое на оценку
type Submission struct {
	UserID     string `json:"userId"`
	Role       string `json:"role"`
	TechStack  string `json:"techStack"`
	Transcript []Turn `json:"transcript"`
	Duration   int    `json:"duration"` // секунды
}

// Assessment - итоговая оценка интервью
type Assessment struct {
	TotalScore int                  `json:"totalScore" firestore:"totalScore"`
	Strengths  []string             `json:"strengths" firestore:"strengths"`
	Weaknesses []string             `json:"weaknesses" firestore:"weaknesses"`
	Feedback   string               `json:"feedback" firestore:"feedback"`
	Questions  []QuestionAssessment `json:"questions" firestore:"questions"`
}

// QuestionAssessment - оценка ответа на один вопрос
type QuestionAssessment struct {
	Question    string `json:"question" firestore:"question"`
	UserAnswer  string `json:"userAnswer" firestore:"userAnswer"`
	Score       int    `json:"score" firestore:"score"`
	Feedback    string `json:"feedback" firestore:"feedback"`
	IdealAnswer string `json:"idealAnswer" firestore:"idealAnswer"`
}

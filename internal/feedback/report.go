package feedback

import (
	"fmt"
	"strings"

	"mock-interview/internal/domain"
)

type Band string

const (
	BandStrong Band = "strong"
	BandFair   Band = "fair"
	BandWeak   Band = "weak"
)

// TotalBand оценивает общий балл (0-100)
func TotalBand(score int) Band {
	switch {
	case score >= 80:
		return BandStrong
	case score >= 60:
		return BandFair
	default:
		return BandWeak
	}
}

// QuestionBand оценивает балл за вопрос (0-10)
func QuestionBand(score int) Band {
	switch {
	case score >= 7:
		return BandStrong
	case score >= 4:
		return BandFair
	default:
		return BandWeak
	}
}

// FormatReport готовит текстовый отчет по оценке
func FormatReport(a domain.Assessment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Score: %d/100 (%s)\n", a.TotalScore, TotalBand(a.TotalScore))

	if len(a.Strengths) > 0 {
		b.WriteString("\nStrengths:\n")
		for _, s := range a.Strengths {
			fmt.Fprintf(&b, "- %s\n", s)
		}
	}
	if len(a.Weaknesses) > 0 {
		b.WriteString("\nAreas for Improvement:\n")
		for _, w := range a.Weaknesses {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	if a.Feedback != "" {
		fmt.Fprintf(&b, "\nOverall Feedback:\n%s\n", a.Feedback)
	}

	for i, q := range a.Questions {
		fmt.Fprintf(&b, "\nQuestion %d: %s\n", i+1, q.Question)
		fmt.Fprintf(&b, "Score: %d/10 (%s)\n", q.Score, QuestionBand(q.Score))
		fmt.Fprintf(&b, "Your Answer: %q\n", q.UserAnswer)
		if q.IdealAnswer != "" {
			fmt.Fprintf(&b, "Ideal Answer: %s\n", q.IdealAnswer)
		}
		if q.Feedback != "" {
			fmt.Fprintf(&b, "Feedback: %s\n", q.Feedback)
		}
	}

	return b.String()
}

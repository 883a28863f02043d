package training

import "fmt"

// QuestionSetResult is the tagged outcome of validating a quiz's question
// set at load time. Grading never special-cases malformed data because a
// set with Problems is rejected before a session can be built from it.
type QuestionSetResult struct {
	Questions []Question
	Problems  []string
}

func (r QuestionSetResult) Valid() bool { return len(r.Problems) == 0 }

// LoadQuestions validates question shape: non-empty id, at least one option,
// exactly one option flagged correct, option ids unique within a question.
func LoadQuestions(qs []Question) QuestionSetResult {
	res := QuestionSetResult{Questions: qs}
	for i, q := range qs {
		label := q.ID
		if label == "" {
			label = fmt.Sprintf("question[%d]", i)
			res.Problems = append(res.Problems, label+": missing id")
		}
		if len(q.Options) == 0 {
			res.Problems = append(res.Problems, label+": no options")
			continue
		}
		correct := 0
		seen := map[string]bool{}
		for _, o := range q.Options {
			if o.IsCorrect {
				correct++
			}
			if o.ID == "" {
				res.Problems = append(res.Problems, label+": option with missing id")
			} else if seen[o.ID] {
				res.Problems = append(res.Problems, label+": duplicate option id "+o.ID)
			}
			seen[o.ID] = true
		}
		switch {
		case correct == 0:
			res.Problems = append(res.Problems, label+": no correct option")
		case correct > 1:
			res.Problems = append(res.Problems, fmt.Sprintf("%s: %d correct options, want exactly 1", label, correct))
		}
	}
	return res
}

// ValidateCourse runs LoadQuestions over every video's quiz. Videos without
// questions are fine; quizzes are optional.
func ValidateCourse(c Course) []string {
	var problems []string
	for _, v := range c.Videos {
		if !v.HasQuiz() {
			continue
		}
		if res := LoadQuestions(v.Questions); !res.Valid() {
			for _, p := range res.Problems {
				problems = append(problems, "video "+v.ID+": "+p)
			}
		}
	}
	if c.ID == "" {
		problems = append(problems, "course: missing id")
	}
	if c.Title == "" {
		problems = append(problems, "course: missing title")
	}
	return problems
}

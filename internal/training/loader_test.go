package training

import (
	"strings"
	"testing"
)

func TestLoadQuestionsValid(t *testing.T) {
	res := LoadQuestions([]Question{
		mcq("q1", "a", "b", "c"),
		mcq("q2", "x", "y"),
	})
	if !res.Valid() {
		t.Fatalf("valid set flagged: %v", res.Problems)
	}
	if len(res.Questions) != 2 {
		t.Fatalf("questions = %d, want 2", len(res.Questions))
	}
}

func TestLoadQuestionsFlagsMalformed(t *testing.T) {
	cases := []struct {
		name string
		q    Question
		want string
	}{
		{"no options", Question{ID: "q1"}, "no options"},
		{"no correct", Question{ID: "q1", Options: []Option{{ID: "a"}, {ID: "b"}}}, "no correct option"},
		{"two correct", Question{ID: "q1", Options: []Option{
			{ID: "a", IsCorrect: true}, {ID: "b", IsCorrect: true},
		}}, "2 correct options"},
		{"missing id", Question{Options: []Option{{ID: "a", IsCorrect: true}}}, "missing id"},
		{"duplicate option ids", Question{ID: "q1", Options: []Option{
			{ID: "a", IsCorrect: true}, {ID: "a"},
		}}, "duplicate option id"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			res := LoadQuestions([]Question{c.q})
			if res.Valid() {
				t.Fatalf("malformed question accepted")
			}
			found := false
			for _, p := range res.Problems {
				if strings.Contains(p, c.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("problems %v missing %q", res.Problems, c.want)
			}
		})
	}
}

func TestValidateCourse(t *testing.T) {
	c := Course{
		ID:    "c1",
		Title: "Phishing Basics",
		Videos: []Video{
			{ID: "v1", Title: "no quiz here"},
			{ID: "v2", Title: "good quiz", Questions: []Question{mcq("q1", "a", "b")}},
		},
	}
	if problems := ValidateCourse(c); len(problems) != 0 {
		t.Fatalf("valid course flagged: %v", problems)
	}

	c.Title = ""
	c.Videos[1].Questions = []Question{{ID: "q1", Options: []Option{{ID: "a"}}}}
	problems := ValidateCourse(c)
	if len(problems) != 2 {
		t.Fatalf("problems = %v, want missing title and bad question", problems)
	}
	if !strings.Contains(problems[0], "video v2") {
		t.Fatalf("quiz problem not attributed to its video: %v", problems)
	}
}

package interviewprep

import (
	"fmt"
	"strings"
)

const (
	defaultCompany  = "the company"
	defaultSummary  = "Preparation guide generated by AI."
	defaultFinalTip = "Practice your answers out loud and tailor them to your own experiences."
)

// NormalizeGuide fills the fields the model left out. A missing job title
// falls back to the title the user asked for.
func NormalizeGuide(obj map[string]any, requestedTitle string) Guide {
	g := Guide{
		JobTitle:            text(obj["job_title"]),
		Company:             text(obj["company"]),
		Summary:             text(obj["summary"]),
		FinalTip:            text(obj["final_tip"]),
		Sections:            []Section{},
		KeySkills:           []SkillAdvice{},
		BehavioralQuestions: []QuestionTip{},
		QuestionsToAsk:      []string{},
	}
	if g.JobTitle == "" {
		g.JobTitle = strings.TrimSpace(requestedTitle)
	}
	if g.Company == "" {
		g.Company = defaultCompany
	}
	if g.Summary == "" {
		g.Summary = defaultSummary
	}
	if g.FinalTip == "" {
		g.FinalTip = defaultFinalTip
	}

	for _, m := range objects(obj["sections"]) {
		s := Section{Title: text(m["title"]), Content: text(m["content"])}
		if s.Title != "" || s.Content != "" {
			g.Sections = append(g.Sections, s)
		}
	}
	for _, m := range objects(obj["key_skills"]) {
		s := SkillAdvice{Skill: text(m["skill"]), Advice: text(m["advice"]), ExamplePrompt: text(m["example_prompt"])}
		if s.Skill != "" {
			g.KeySkills = append(g.KeySkills, s)
		}
	}
	for _, m := range objects(obj["behavioral_questions"]) {
		q := QuestionTip{Question: text(m["question"]), Tip: text(m["tip"])}
		if q.Question != "" {
			g.BehavioralQuestions = append(g.BehavioralQuestions, q)
		}
	}
	if items, ok := obj["questions_to_ask"].([]any); ok {
		for _, item := range items {
			if s := text(item); s != "" {
				g.QuestionsToAsk = append(g.QuestionsToAsk, s)
			}
		}
	}
	return g
}

func objects(v any) []map[string]any {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64, bool:
		return fmt.Sprint(s)
	default:
		return ""
	}
}

// normalizeOptions trims, drops empties and removes duplicates, keeping order.
func normalizeOptions(in []string) []string {
	out := []string{}
	seen := make(map[string]struct{}, len(in))
	for _, o := range in {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		key := strings.ToLower(o)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, o)
	}
	return out
}

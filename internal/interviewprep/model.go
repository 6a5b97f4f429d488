package interviewprep

import "time"

type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type SkillAdvice struct {
	Skill         string `json:"skill"`
	Advice        string `json:"advice"`
	ExamplePrompt string `json:"example_prompt,omitempty"`
}

type QuestionTip struct {
	Question string `json:"question"`
	Tip      string `json:"tip"`
}

// Guide is the structured preparation guide produced by the model.
type Guide struct {
	JobTitle            string        `json:"job_title"`
	Company             string        `json:"company"`
	Summary             string        `json:"summary"`
	Sections            []Section     `json:"sections"`
	KeySkills           []SkillAdvice `json:"key_skills"`
	BehavioralQuestions []QuestionTip `json:"behavioral_questions"`
	QuestionsToAsk      []string      `json:"questions_to_ask"`
	FinalTip            string        `json:"final_tip"`
}

// InterviewPrep is one archived guide. Content holds the Guide as JSON text.
type InterviewPrep struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	ResumeID       string    `json:"resumeId"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
	Options        []string  `json:"options"`
	Content        string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

type Summary struct {
	ID        string    `json:"id"`
	JobTitle  string    `json:"job_title"`
	CreatedAt time.Time `json:"created_at"`
}

type Request struct {
	JobTitle       string   `json:"job_title" binding:"required,max=200"`
	JobDescription string   `json:"job_description" binding:"required"`
	Options        []string `json:"options" binding:"max=10,dive,max=100"`
}

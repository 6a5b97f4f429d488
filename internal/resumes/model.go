package resumes

import "time"

// Resume is a user's single current resume. Re-uploads overwrite it in place.
type Resume struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Filename   string    `json:"filename"`
	Content    string    `json:"-"`
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Improvement struct {
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// Feedback is the normalized analysis payload produced by the model.
type Feedback struct {
	ATSScore        int           `json:"ats_score"`
	KeySkills       []string      `json:"key_skills"`
	Strengths       []string      `json:"strengths"`
	MissingSections []string      `json:"missing_sections"`
	Improvements    []Improvement `json:"improvements"`
}

// Analysis is the single analysis attached to a resume.
type Analysis struct {
	ID        string    `json:"id"`
	ResumeID  string    `json:"resumeId"`
	Feedback  Feedback  `json:"feedback"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ResumeInput is what an upload writes to the resume record.
type ResumeInput struct {
	Filename   string
	Content    string
	StorageKey string
}

package coverletters

import "time"

// CoverLetter is one generated letter. Letters are append-only.
type CoverLetter struct {
	ID             string    `json:"id"`
	UserID         string    `json:"-"`
	ResumeID       string    `json:"resumeId"`
	JobTitle       string    `json:"job_title"`
	JobDescription string    `json:"job_description"`
	CompanyInfo    string    `json:"company_info,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// Summary is the list view of a cover letter.
type Summary struct {
	ID        string    `json:"id"`
	JobTitle  string    `json:"job_title"`
	CreatedAt time.Time `json:"created_at"`
}

// Request is the body of a generate request.
type Request struct {
	JobTitle       string `json:"job_title" binding:"required,max=200"`
	JobDescription string `json:"job_description" binding:"required"`
	CompanyInfo    string `json:"company_info"`
}

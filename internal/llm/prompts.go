package llm

import (
	_ "embed"
	"strings"
	"unicode/utf8"
)

var (
	//go:embed prompts/analysis.txt
	analysisTemplate string
	//go:embed prompts/cover_letter.txt
	coverLetterTemplate string
	//go:embed prompts/interview_prep.txt
	interviewPrepTemplate string
)

// Input limits, counted in characters (runes).
const (
	AnalysisResumeLimit         = 10000
	CoverLetterResumeLimit      = 8000
	CoverLetterDescriptionLimit = 5000
	InterviewResumeLimit        = 6000
	InterviewDescriptionLimit   = 3000
)

const (
	defaultCompanyInfo = "Not provided"
	noOptions          = "None"
)

// BuildAnalysisPrompt renders the resume analysis prompt.
func BuildAnalysisPrompt(resumeText string) string {
	return render(analysisTemplate,
		"{{RESUME}}", Truncate(resumeText, AnalysisResumeLimit),
	)
}

// CoverLetterInput carries the caller's cover letter request.
type CoverLetterInput struct {
	ResumeText     string
	JobTitle       string
	JobDescription string
	CompanyInfo    string
}

// BuildCoverLetterPrompt renders the cover letter prompt.
func BuildCoverLetterPrompt(in CoverLetterInput) string {
	company := strings.TrimSpace(in.CompanyInfo)
	if company == "" {
		company = defaultCompanyInfo
	}
	return render(coverLetterTemplate,
		"{{RESUME}}", Truncate(in.ResumeText, CoverLetterResumeLimit),
		"{{JOB_TITLE}}", strings.TrimSpace(in.JobTitle),
		"{{JOB_DESCRIPTION}}", Truncate(in.JobDescription, CoverLetterDescriptionLimit),
		"{{COMPANY_INFO}}", company,
	)
}

// InterviewPrepInput carries the caller's interview prep request.
type InterviewPrepInput struct {
	ResumeText     string
	JobTitle       string
	JobDescription string
	Options        []string
}

// BuildInterviewPrepPrompt renders the interview preparation prompt.
func BuildInterviewPrepPrompt(in InterviewPrepInput) string {
	options := noOptions
	if len(in.Options) > 0 {
		options = strings.Join(in.Options, ", ")
	}
	return render(interviewPrepTemplate,
		"{{RESUME}}", Truncate(in.ResumeText, InterviewResumeLimit),
		"{{JOB_TITLE}}", strings.TrimSpace(in.JobTitle),
		"{{JOB_DESCRIPTION}}", Truncate(in.JobDescription, InterviewDescriptionLimit),
		"{{OPTIONS}}", options,
	)
}

// Truncate returns at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}

// render substitutes placeholders in a single pass, so placeholder-looking
// text inside user input is left untouched.
func render(template string, oldnew ...string) string {
	return strings.NewReplacer(oldnew...).Replace(template)
}

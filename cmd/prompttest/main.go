package main

// Render a prompt for a local resume and optionally send it to Gemini:
//   go run ./cmd/prompttest -resume cv.pdf -task cover_letter -title "Backend Engineer" -jd jd.txt -invoke

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"smartcareer-backend/internal/extract"
	"smartcareer-backend/internal/interviewprep"
	"smartcareer-backend/internal/llm"
	"smartcareer-backend/internal/llm/gemini"
	"smartcareer-backend/internal/llm/generate"
	"smartcareer-backend/internal/resumes"
	"smartcareer-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	resumePath := flag.String("resume", "", "Path to a PDF resume")
	task := flag.String("task", generate.TaskAnalysis, "analysis, cover_letter or interview_prep")
	title := flag.String("title", "", "Job title")
	jdPath := flag.String("jd", "", "Path to a job description file")
	company := flag.String("company", "", "Company info")
	options := flag.String("options", "", "Comma separated interview prep options")
	invoke := flag.Bool("invoke", false, "Send the prompt to Gemini and print the normalized result")
	flag.Parse()

	if strings.TrimSpace(*resumePath) == "" {
		exitErr("resume path is required")
	}
	resumeText, err := extract.ExtractFile(*resumePath)
	if err != nil {
		exitErr(fmt.Sprintf("extract resume text: %v", err))
	}

	jobDescription := ""
	if strings.TrimSpace(*jdPath) != "" {
		data, err := os.ReadFile(*jdPath)
		if err != nil {
			exitErr(fmt.Sprintf("read job description: %v", err))
		}
		jobDescription = string(data)
	}

	var prompt string
	switch *task {
	case generate.TaskAnalysis:
		prompt = llm.BuildAnalysisPrompt(resumeText)
	case generate.TaskCoverLetter:
		prompt = llm.BuildCoverLetterPrompt(llm.CoverLetterInput{
			ResumeText:     resumeText,
			JobTitle:       *title,
			JobDescription: jobDescription,
			CompanyInfo:    *company,
		})
	case generate.TaskInterviewPrep:
		prompt = llm.BuildInterviewPrepPrompt(llm.InterviewPrepInput{
			ResumeText:     resumeText,
			JobTitle:       *title,
			JobDescription: jobDescription,
			Options:        splitOptions(*options),
		})
	default:
		exitErr(fmt.Sprintf("unsupported task: %s", *task))
	}

	if !*invoke {
		fmt.Println(prompt)
		return
	}

	client, err := gemini.NewClient(gemini.Options{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		BaseURL:         cfg.GeminiBaseURL,
		Timeout:         cfg.GeminiTimeout,
		MaxRetries:      cfg.GeminiMaxRetries,
		MaxOutputTokens: cfg.GeminiMaxOutputTokens,
	})
	if err != nil {
		exitErr(err.Error())
	}
	obj, strategy, err := generate.JSON(context.Background(), client, *task, prompt)
	if err != nil {
		exitErr(fmt.Sprintf("generate: %v", err))
	}
	fmt.Fprintf(os.Stderr, "extract strategy: %s\n", strategy)

	var result any = obj
	switch *task {
	case generate.TaskAnalysis:
		result = resumes.NormalizeFeedback(obj)
	case generate.TaskInterviewPrep:
		result = interviewprep.NormalizeGuide(obj, *title)
	case generate.TaskCoverLetter:
		result = map[string]any{"job_title": *title, "letter": obj["letter"]}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		exitErr(fmt.Sprintf("write stdout: %v", err))
	}
}

func splitOptions(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func exitErr(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}

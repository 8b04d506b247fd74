package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/models"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"gorm.io/gorm"
)

// ReviewService proxies entry-sheet text to the AI reviewer and persists the
// structured result. The review engine itself is external; this is a thin
// client around one prompt.
type ReviewService struct {
	DB          *gorm.DB
	EntrySheets *EntrySheetService
	Client      llms.Model
	Model       string
}

func NewReviewService(db *gorm.DB, sheets *EntrySheetService, apiKey, model string) *ReviewService {
	svc := &ReviewService{DB: db, EntrySheets: sheets, Model: model}
	if apiKey == "" {
		log.Println("⚠️  GEMINI_API_KEY not set, entry-sheet review disabled")
		return svc
	}
	llm, err := googleai.New(context.Background(),
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		log.Printf("⚠️  Failed to create Gemini client, entry-sheet review disabled: %v", err)
		return svc
	}
	svc.Client = llm
	return svc
}

const reviewPrompt = `
You are a veteran recruiter reviewing a Japanese new-graduate entry sheet answer.

### INSTRUCTIONS:
1. **Read** the question and the candidate's answer below.
2. **Score** the answer from 0 to 100 for clarity, specificity, and fit to the question.
3. **List** concrete strengths and concrete improvements. Quote the answer where useful.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "score": 0,
    "summary": "One-paragraph overall assessment",
    "strengths": ["Array", "of", "specific strengths"],
    "improvements": ["Array", "of", "specific, actionable improvements"]
}

### CONSTRAINT:
The answer has a character limit of %d (0 means no limit). Flag it if the answer is far under or over.

### QUESTION:
%s

### ANSWER:
%s
`

type reviewResult struct {
	Score        int      `json:"score"`
	Summary      string   `json:"summary"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

// ReviewEntrySheet runs one AI review round and stores the result.
func (s *ReviewService) ReviewEntrySheet(ctx context.Context, entrySheetID uint, ident auth.Identity) (*models.EntrySheetReview, error) {
	sheet, err := s.EntrySheets.authorizedEntrySheet(ctx, entrySheetID, ident)
	if err != nil {
		return nil, err
	}
	if s.Client == nil {
		return nil, apperr.New(apperr.CodeInternal, "entry-sheet review is not configured")
	}

	prompt := fmt.Sprintf(reviewPrompt, sheet.CharLimit, sheet.Question, sheet.Body)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "AI review failed", err)
	}

	result, err := parseReviewResponse(resp)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "AI review returned malformed output", err)
	}

	review := &models.EntrySheetReview{
		EntrySheetID: sheet.ID,
		Score:        result.Score,
		Summary:      result.Summary,
		Strengths:    strings.Join(result.Strengths, "\n"),
		Improvements: strings.Join(result.Improvements, "\n"),
		Model:        s.Model,
	}
	if err := s.DB.WithContext(ctx).Create(review).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return review, nil
}

// parseReviewResponse tolerates the model wrapping its JSON in markdown
// fences despite being told not to.
func parseReviewResponse(raw string) (*reviewResult, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var result reviewResult
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

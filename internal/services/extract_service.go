package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shukatsu-compass/backend/internal/apperr"
	"github.com/shukatsu-compass/backend/internal/auth"
	"github.com/shukatsu-compass/backend/internal/models"
	"github.com/tmc/langchaingo/llms"
	"gorm.io/gorm"
)

// ExtractService turns pasted recruiting text (a mypage notice, an email
// body) into unconfirmed deadline rows. Extracted rows carry a confidence
// marker and the source URL, and stay isConfirmed=false until a human checks
// them through the lifecycle update.
type ExtractService struct {
	DB        *gorm.DB
	Companies *CompanyService
	Client    llms.Model
}

func NewExtractService(db *gorm.DB, companies *CompanyService, client llms.Model) *ExtractService {
	return &ExtractService{DB: db, Companies: companies, Client: client}
}

const extractPrompt = `
You are a Deadline Extraction Agent for Japanese job hunting (shukatsu). Analyze the raw
text from a recruiting email or mypage notice and extract every concrete deadline.

### INSTRUCTIONS:
1. **Ignore** greetings, signatures, and boilerplate.
2. **Extract** each deadline with its company, category, and due date.
3. **Format** the output as a valid JSON array only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA (array element):
{
    "company_name": "Company the deadline belongs to",
    "type": "one of: es_submission, web_test, aptitude_test, interview_1, interview_2, interview_3, interview_final, briefing_session, internship, offer_response, other",
    "title": "Short human-readable title for the deadline",
    "due_date": "ISO 8601 timestamp, or YYYY-MM-DD when only a date is given",
    "confidence": "low, medium, or high — how certain you are about the extracted values"
}

### CONSTRAINT:
If no deadline is present, return []. Do not hallucinate or guess dates.

### RAW CONTENT:
%s
`

type extractedDeadline struct {
	CompanyName string `json:"company_name"`
	Type        string `json:"type"`
	Title       string `json:"title"`
	DueDate     string `json:"due_date"`
	Confidence  string `json:"confidence"`
}

// ExtractDeadlines runs the extraction and stores one unconfirmed deadline per
// hit that matches a company the caller tracks. Non-matching hits are skipped
// rather than guessed into the wrong company.
func (s *ExtractService) ExtractDeadlines(ctx context.Context, rawText, sourceURL string, ident auth.Identity) ([]models.Deadline, error) {
	if ident.IsZero() {
		return nil, apperr.Unauthorized("authentication required")
	}
	if s.Client == nil {
		return nil, apperr.New(apperr.CodeInternal, "deadline extraction is not configured")
	}
	if len(rawText) > 20000 {
		rawText = rawText[:20000]
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(extractPrompt, rawText))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "AI extraction failed", err)
	}

	hits, err := parseExtractResponse(resp)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "AI extraction returned malformed output", err)
	}

	companies, err := s.Companies.List(ctx, ident)
	if err != nil {
		return nil, err
	}

	var created []models.Deadline
	for _, hit := range hits {
		company := MatchCompany(companies, hit.CompanyName)
		if company == nil {
			continue
		}
		deadlineType := models.DeadlineType(hit.Type)
		if !deadlineType.Valid() {
			deadlineType = models.DeadlineOther
		}
		title := strings.TrimSpace(hit.Title)
		if title == "" {
			continue
		}
		dueDate, err := parseDate(hit.DueDate)
		if err != nil {
			continue
		}
		confidence := models.Confidence(hit.Confidence)
		if !confidence.Valid() {
			confidence = models.ConfidenceLow
		}

		deadline := models.Deadline{
			CompanyID:  company.ID,
			Type:       deadlineType,
			Title:      title,
			DueDate:    normalizeAllDay(dueDate),
			Confidence: &confidence,
			SourceURL:  trimToNil(sourceURL),
		}
		if err := s.DB.WithContext(ctx).Create(&deadline).Error; err != nil {
			return nil, apperr.Internal(err)
		}
		created = append(created, deadline)
	}
	return created, nil
}

func parseExtractResponse(raw string) ([]extractedDeadline, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var hits []extractedDeadline
	if err := json.Unmarshal([]byte(cleaned), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

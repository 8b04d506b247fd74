package models

// DeadlineType categorizes what kind of obligation a deadline is.
type DeadlineType string

const (
	DeadlineESSubmission   DeadlineType = "es_submission"
	DeadlineWebTest        DeadlineType = "web_test"
	DeadlineAptitudeTest   DeadlineType = "aptitude_test"
	DeadlineInterview1     DeadlineType = "interview_1"
	DeadlineInterview2     DeadlineType = "interview_2"
	DeadlineInterview3     DeadlineType = "interview_3"
	DeadlineInterviewFinal DeadlineType = "interview_final"
	DeadlineBriefing       DeadlineType = "briefing_session"
	DeadlineInternship     DeadlineType = "internship"
	DeadlineOfferResponse  DeadlineType = "offer_response"
	DeadlineOther          DeadlineType = "other"
)

func (t DeadlineType) Valid() bool {
	switch t {
	case DeadlineESSubmission, DeadlineWebTest, DeadlineAptitudeTest,
		DeadlineInterview1, DeadlineInterview2, DeadlineInterview3,
		DeadlineInterviewFinal, DeadlineBriefing, DeadlineInternship,
		DeadlineOfferResponse, DeadlineOther:
		return true
	}
	return false
}

// Confidence marks how trustworthy an AI-extracted deadline is believed to be.
// It is set only by the extraction intake, never by user edits.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

func (c Confidence) Valid() bool {
	switch c {
	case ConfidenceLow, ConfidenceMedium, ConfidenceHigh:
		return true
	}
	return false
}

type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

type TaskType string

const (
	TaskTypeES            TaskType = "es"
	TaskTypeInterviewPrep TaskType = "interview_prep"
	TaskTypeResearch      TaskType = "research"
	TaskTypeOther         TaskType = "other"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeES, TaskTypeInterviewPrep, TaskTypeResearch, TaskTypeOther:
		return true
	}
	return false
}

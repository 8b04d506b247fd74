package dtos

import "encoding/json"

type DeadlineCreateRequest struct {
	CompanyID     uint    `json:"company_id" binding:"required"`
	ApplicationID *uint   `json:"application_id"`
	Type          string  `json:"type" binding:"required"`
	Title         string  `json:"title" binding:"required"`
	Description   *string `json:"description"`
	Memo          *string `json:"memo"`
	DueDate       string  `json:"due_date" binding:"required"`
}

// DeadlineUpdateRequest is a partial update: every field is optional and only
// the fields present in the request body are applied. completed_at is
// tri-state (absent / explicit null / value), which drives the completion and
// reversal transitions.
type DeadlineUpdateRequest struct {
	Type        *string        `json:"type"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Memo        *string        `json:"memo"`
	DueDate     *string        `json:"due_date"`
	SourceURL   *string        `json:"source_url"`
	IsConfirmed *bool          `json:"is_confirmed"`
	CompletedAt OptionalString `json:"completed_at"`
}

// OptionalString distinguishes a JSON field that was absent from one that was
// explicitly null. Set is true whenever the key appeared in the payload.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

type DeadlineExtractRequest struct {
	RawText   string `json:"raw_text" binding:"required"`
	SourceURL string `json:"source_url"`
}

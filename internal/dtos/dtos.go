package dtos

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type GuestTokenResponse struct {
	DeviceToken string `json:"device_token"`
}

type CompanyCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Industry string `json:"industry"`
	Status   string `json:"status"`
	Memo     string `json:"memo"`
}

type CompanyUpdateRequest struct {
	Name     *string `json:"name"`
	Industry *string `json:"industry"`
	Status   *string `json:"status"`
	Memo     *string `json:"memo"`
}

type ApplicationCreateRequest struct {
	Channel string `json:"channel"`
	Status  string `json:"status"`
	Notes   string `json:"notes"`
}

type ApplicationUpdateRequest struct {
	Channel *string `json:"channel"`
	Status  *string `json:"status"`
	Notes   *string `json:"notes"`
}

type TaskCreateRequest struct {
	CompanyID     uint    `json:"company_id" binding:"required"`
	ApplicationID *uint   `json:"application_id"`
	DeadlineID    *uint   `json:"deadline_id"`
	Title         string  `json:"title" binding:"required"`
	Type          string  `json:"type"`
	DueDate       *string `json:"due_date"`
}

type TaskUpdateRequest struct {
	Title     *string `json:"title"`
	Status    *string `json:"status"`
	SortOrder *int    `json:"sort_order"`
}

type TaskReorderRequest struct {
	TaskIDs []uint `json:"task_ids" binding:"required,min=1"`
}

type EntrySheetCreateRequest struct {
	CompanyID     uint   `json:"company_id" binding:"required"`
	ApplicationID *uint  `json:"application_id"`
	Question      string `json:"question" binding:"required"`
	Body          string `json:"body" binding:"required"`
	CharLimit     int    `json:"char_limit"`
}

type EntrySheetUpdateRequest struct {
	Question  *string `json:"question"`
	Body      *string `json:"body"`
	CharLimit *int    `json:"char_limit"`
}

type CheckoutResponse struct {
	URL string `json:"url"`
}

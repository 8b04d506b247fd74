package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`

	Subscription *Subscription `json:"subscription,omitempty"`
}

// Guest is a non-authenticated caller identified solely by an opaque
// device token. Guests own companies the same way users do.
type Guest struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	DeviceToken string `gorm:"uniqueIndex;not null" json:"-"`
}

// Company belongs to exactly one of UserID or GuestID. There is no
// per-deadline owner field; authorization always goes through the company.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID  *uint `gorm:"index" json:"user_id,omitempty"`
	GuestID *uint `gorm:"index" json:"guest_id,omitempty"`

	Name     string `gorm:"not null" json:"name"`
	Industry string `json:"industry"`
	Status   string `gorm:"default:'interested'" json:"status"`
	Memo     string `gorm:"type:text" json:"memo"`

	// 'omitempty' prevents infinite loops when fetching a Company -> Deadlines -> Company -> ...
	Applications []Application `json:"applications,omitempty"`
	Deadlines    []Deadline    `json:"deadlines,omitempty"`
}

// Application is one selection track at a company (new-grad, internship, ...).
type Application struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint   `gorm:"not null;index" json:"company_id"`
	Channel   string `json:"channel"`
	Status    string `gorm:"default:'entried'" json:"status"`
	Notes     string `gorm:"type:text" json:"notes"`
}

// Deadline is a due-date-bound obligation tied to a company. Rows created by
// the AI extraction intake start with IsConfirmed=false and carry Confidence
// and SourceURL; rows created by hand carry neither.
type Deadline struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID     uint  `gorm:"not null;index" json:"company_id"`
	ApplicationID *uint `gorm:"index" json:"application_id"`

	Type        DeadlineType `gorm:"not null" json:"type"`
	Title       string       `gorm:"not null" json:"title"`
	Description *string      `gorm:"type:text" json:"description"`
	Memo        *string      `gorm:"type:text" json:"memo"`
	DueDate     time.Time    `gorm:"not null;index" json:"due_date"`

	IsConfirmed bool        `gorm:"default:false" json:"is_confirmed"`
	Confidence  *Confidence `json:"confidence"`
	SourceURL   *string     `json:"source_url"`

	CompletedAt *time.Time `json:"completed_at"`

	// Ids of the tasks that were auto-completed when this deadline was
	// completed. Non-empty only while CompletedAt is set; cleared on reversal.
	// Stored denormalized so reversal is a single-row read.
	AutoCompletedTaskIDs TaskIDList `gorm:"type:text" json:"auto_completed_task_ids"`

	// Optimistic concurrency guard. Bumped on every lifecycle update.
	LockVersion int `gorm:"not null;default:0" json:"-"`

	// Google Calendar event backing this deadline, if synced.
	CalendarEventID *string `json:"calendar_event_id,omitempty"`
}

type Task struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID     uint  `gorm:"not null;index" json:"company_id"`
	ApplicationID *uint `json:"application_id"`
	DeadlineID    *uint `gorm:"index" json:"deadline_id"`

	Title           string     `gorm:"not null" json:"title"`
	Type            TaskType   `gorm:"default:'other'" json:"type"`
	Status          TaskStatus `gorm:"default:'open';index" json:"status"`
	IsAutoGenerated bool       `gorm:"default:false" json:"is_auto_generated"`
	SortOrder       int        `gorm:"default:0" json:"sort_order"`

	// Copied from the parent deadline at creation time, not kept in sync.
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
}

type EntrySheet struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID     uint  `gorm:"not null;index" json:"company_id"`
	ApplicationID *uint `json:"application_id"`

	Question  string `gorm:"type:text;not null" json:"question"`
	Body      string `gorm:"type:text;not null" json:"body"`
	CharLimit int    `json:"char_limit"`

	Reviews []EntrySheetReview `json:"reviews,omitempty"`
}

// EntrySheetReview is the stored output of one AI review round.
type EntrySheetReview struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	EntrySheetID uint   `gorm:"not null;index" json:"entry_sheet_id"`
	Score        int    `json:"score"`
	Summary      string `gorm:"type:text" json:"summary"`
	Strengths    string `gorm:"type:text" json:"strengths"`
	Improvements string `gorm:"type:text" json:"improvements"`
	Model        string `json:"model"`
}

type Subscription struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID               uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Plan                 string     `gorm:"default:'free'" json:"plan"`
	Status               string     `gorm:"default:'inactive'" json:"status"`
	StripeCustomerID     string     `json:"-"`
	StripeSubscriptionID string     `json:"-"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end"`
}

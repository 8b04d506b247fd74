package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shukatsu-compass/backend/internal/database"
	"github.com/shukatsu-compass/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB creates an in-memory SQLite database with the full schema
// applied. The database is closed when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// One connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access test database pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// --- FIXTURES ---

func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user fixture: %v", err)
	}
	return user
}

func CreateGuest(t *testing.T, db *gorm.DB, deviceToken string) *models.Guest {
	t.Helper()
	guest := &models.Guest{DeviceToken: deviceToken}
	if err := db.Create(guest).Error; err != nil {
		t.Fatalf("failed to create guest fixture: %v", err)
	}
	return guest
}

func CreateCompany(t *testing.T, db *gorm.DB, userID, guestID *uint, name string) *models.Company {
	t.Helper()
	company := &models.Company{UserID: userID, GuestID: guestID, Name: name}
	if err := db.Create(company).Error; err != nil {
		t.Fatalf("failed to create company fixture: %v", err)
	}
	return company
}

func CreateDeadline(t *testing.T, db *gorm.DB, companyID uint, dueDate time.Time) *models.Deadline {
	t.Helper()
	deadline := &models.Deadline{
		CompanyID: companyID,
		Type:      models.DeadlineESSubmission,
		Title:     "ES submission",
		DueDate:   dueDate,
	}
	if err := db.Create(deadline).Error; err != nil {
		t.Fatalf("failed to create deadline fixture: %v", err)
	}
	return deadline
}

func CreateTask(t *testing.T, db *gorm.DB, companyID uint, deadlineID *uint, title string, status models.TaskStatus) *models.Task {
	t.Helper()
	task := &models.Task{
		CompanyID:  companyID,
		DeadlineID: deadlineID,
		Title:      title,
		Status:     status,
	}
	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create task fixture: %v", err)
	}
	return task
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shukatsu-compass/backend/internal/models"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"gorm.io/gorm"
)

// CalendarService mirrors confirmed upcoming deadlines into Google Calendar.
// Sync is advisory: a failed cycle is retried on the next tick and never
// blocks the request path.
type CalendarService struct {
	DB         *gorm.DB
	Calendar   *calendar.Service
	CalendarID string
	Interval   time.Duration
	Horizon    time.Duration
}

func NewCalendarService(db *gorm.DB, cal *calendar.Service, interval, horizon time.Duration) *CalendarService {
	return &CalendarService{
		DB:         db,
		Calendar:   cal,
		CalendarID: "primary",
		Interval:   interval,
		Horizon:    horizon,
	}
}

// StartWatcher starts the background sync loop.
func (s *CalendarService) StartWatcher() {
	if s.Calendar == nil {
		log.Println("⚠️ Calendar sync disabled (no client). Check credentials.")
		return
	}

	ticker := time.NewTicker(s.Interval)

	// Run immediately on startup
	go s.SyncDeadlines()

	go func() {
		for range ticker.C {
			s.SyncDeadlines()
		}
	}()
}

// SyncDeadlines pushes every confirmed, uncompleted deadline inside the sync
// horizon to the calendar, creating or updating its backing event.
func (s *CalendarService) SyncDeadlines() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Println("📅 Calendar Sync: Starting cycle...")

	now := time.Now().UTC()
	var deadlines []models.Deadline
	err := s.DB.WithContext(ctx).
		Where("is_confirmed = ? AND completed_at IS NULL", true).
		Where("due_date >= ? AND due_date <= ?", now, now.Add(s.Horizon)).
		Find(&deadlines).Error
	if err != nil {
		log.Printf("❌ Calendar Sync: deadline query failed: %v", err)
		return
	}

	synced := 0
	for i := range deadlines {
		if err := s.upsertEvent(ctx, &deadlines[i]); err != nil {
			log.Printf("⚠️ Calendar Sync: deadline %d failed: %v", deadlines[i].ID, err)
			continue
		}
		synced++
	}
	log.Printf("✅ Calendar Sync: %d/%d deadlines synced.", synced, len(deadlines))
}

func (s *CalendarService) upsertEvent(ctx context.Context, deadline *models.Deadline) error {
	event := &calendar.Event{
		Summary:     deadline.Title,
		Description: fmt.Sprintf("Deadline type: %s", deadline.Type),
		Start:       &calendar.EventDateTime{DateTime: deadline.DueDate.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: deadline.DueDate.Add(time.Hour).Format(time.RFC3339)},
	}

	if deadline.CalendarEventID != nil {
		err := retry(2, 500*time.Millisecond, func() error {
			_, e := s.Calendar.Events.Update(s.CalendarID, *deadline.CalendarEventID, event).Context(ctx).Do()
			return e
		})
		// The user may have deleted the event by hand; recreate it below.
		if !isEventGoneError(err) {
			return err
		}
	}

	var created *calendar.Event
	err := retry(2, 500*time.Millisecond, func() error {
		var e error
		created, e = s.Calendar.Events.Insert(s.CalendarID, event).Context(ctx).Do()
		return e
	})
	if err != nil {
		return err
	}

	return s.DB.WithContext(ctx).Model(&models.Deadline{}).
		Where("id = ?", deadline.ID).
		Update("calendar_event_id", created.Id).Error
}

// --- HELPERS ---

// retry executes a function with exponential backoff
func retry(attempts int, sleep time.Duration, f func() error) error {
	for i := 0; i < attempts; i++ {
		err := f()
		if err == nil {
			return nil
		}
		// If the event is gone (404/410), fail fast so the caller can recreate it
		if isEventGoneError(err) {
			return err
		}

		log.Printf("⚠️ API Error: %v. Retrying in %v...", err, sleep)
		time.Sleep(sleep)
		sleep *= 2
	}
	return fmt.Errorf("failed after %d attempts", attempts)
}

func isEventGoneError(err error) bool {
	if gErr, ok := err.(*googleapi.Error); ok {
		return gErr.Code == 404 || gErr.Code == 410
	}
	return false
}

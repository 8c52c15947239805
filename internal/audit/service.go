package audit

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/bookcatalog/internal/database/audit"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

const maxTextLen = 500

// Service provides high-level audit logging functionality.
// Writes are synchronous; a failed write is logged and never surfaces to the
// caller, so auditing cannot fail a catalog operation.
type Service struct {
	repo *audit.Repository
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

func (s *Service) record(ctx context.Context, event *entities.AuditEvent) {
	if err := s.Log(ctx, event); err != nil {
		log.Printf("Failed to log audit event %s: %v", event.Action, err)
	}
}

// LogBookChange records a successful create or update of a book.
func (s *Service) LogBookChange(ctx context.Context, action string, book *entities.Book) {
	eventType := entities.AuditEventUpdate
	verb := "Updated"
	if strings.HasSuffix(action, "_create") {
		eventType = entities.AuditEventCreate
		verb = "Created"
	}

	id := book.ID
	s.record(ctx, &entities.AuditEvent{
		EventType:   eventType,
		Action:      action,
		Description: truncate(fmt.Sprintf("%s book: %s (%s)", verb, book.Title, book.ISBN), maxTextLen),
		EntityType:  "book",
		EntityID:    &id,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogBookDelete records a permanent book deletion.
func (s *Service) LogBookDelete(ctx context.Context, id uint) {
	s.record(ctx, &entities.AuditEvent{
		EventType:   entities.AuditEventDelete,
		Action:      "book_delete",
		Description: fmt.Sprintf("Deleted book #%d", id),
		EntityType:  "book",
		EntityID:    &id,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogStorageFailure records an unexpected storage error raised while
// performing action.
func (s *Service) LogStorageFailure(ctx context.Context, action string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	s.record(ctx, &entities.AuditEvent{
		EventType:   entities.AuditEventStorage,
		Action:      action,
		Description: "Storage failure during " + action,
		EntityType:  "book",
		Status:      entities.AuditStatusFailed,
		ErrorMsg:    truncate(msg, maxTextLen),
	})
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(ctx context.Context, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, limit, offset)
}

// GetEventsByType retrieves audit events filtered by type.
func (s *Service) GetEventsByType(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(ctx, eventType, limit, offset)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

// truncate shortens a string to at most maxLen bytes without splitting a
// UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/vanthaita/Orca-CLI-sub000/internal/models"
	"github.com/vanthaita/Orca-CLI-sub000/internal/store"
	"github.com/vanthaita/Orca-CLI-sub000/internal/util"

	"github.com/google/uuid"
)

const (
	auditBatchSize     = 100
	auditFlushInterval = time.Second
	redacted           = "***REDACTED***"
)

// AuditLogEntry represents the data needed to create an audit log entry
type AuditLogEntry struct {
	EventType     models.EventType
	Severity      models.EventSeverity
	ActorUserID   string
	ActorIP       string
	ResourceType  models.ResourceType
	ResourceID    string
	ResourceName  string
	Action        string
	Details       models.AuditDetails
	Success       bool
	ErrorMessage  string
	UserAgent     string
	RequestPath   string
	RequestMethod string
}

// AuditService writes audit entries in the background, batching inserts.
// A disabled service accepts and discards every entry.
type AuditService struct {
	store   *store.Store
	enabled bool

	logChan chan *models.AuditLog

	batchMu     sync.Mutex
	batchBuffer []*models.AuditLog

	wg         sync.WaitGroup
	shutdownCh chan struct{}
	closeOnce  sync.Once
}

func NewAuditService(s *store.Store, enabled bool, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 1000
	}

	service := &AuditService{
		store:       s,
		enabled:     enabled,
		logChan:     make(chan *models.AuditLog, bufferSize),
		batchBuffer: make([]*models.AuditLog, 0, auditBatchSize),
		shutdownCh:  make(chan struct{}),
	}

	if enabled {
		service.wg.Add(1)
		go service.worker()
		log.Printf("[Audit] service started with buffer size %d", bufferSize)
	} else {
		log.Println("[Audit] service is disabled")
	}

	return service
}

func (s *AuditService) worker() {
	defer s.wg.Done()

	ticker := time.NewTicker(auditFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-s.logChan:
			s.addToBatch(entry)
		case <-ticker.C:
			s.flush()
		case <-s.shutdownCh:
			// Drain whatever was queued before shutdown.
			for {
				select {
				case entry := <-s.logChan:
					s.addToBatch(entry)
				default:
					s.flush()
					return
				}
			}
		}
	}
}

func (s *AuditService) addToBatch(entry *models.AuditLog) {
	s.batchMu.Lock()
	s.batchBuffer = append(s.batchBuffer, entry)
	full := len(s.batchBuffer) >= auditBatchSize
	s.batchMu.Unlock()

	if full {
		s.flush()
	}
}

func (s *AuditService) flush() {
	s.batchMu.Lock()
	if len(s.batchBuffer) == 0 {
		s.batchMu.Unlock()
		return
	}
	toWrite := s.batchBuffer
	s.batchBuffer = make([]*models.AuditLog, 0, auditBatchSize)
	s.batchMu.Unlock()

	if err := s.store.CreateAuditLogBatch(context.Background(), toWrite); err != nil {
		log.Printf("[Audit] failed to write batch of %d: %v", len(toWrite), err)
	}
}

func (s *AuditService) build(ctx context.Context, entry AuditLogEntry) *models.AuditLog {
	if entry.ActorIP == "" {
		entry.ActorIP = util.GetIPFromContext(ctx)
	}
	if entry.ActorUserID == "" {
		entry.ActorUserID = models.GetUserIDFromContext(ctx)
	}
	now := utcNow()
	return &models.AuditLog{
		ID:            uuid.New().String(),
		EventType:     entry.EventType,
		EventTime:     now,
		Severity:      entry.Severity,
		ActorUserID:   entry.ActorUserID,
		ActorIP:       entry.ActorIP,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		ResourceName:  entry.ResourceName,
		Action:        entry.Action,
		Details:       maskSensitiveDetails(entry.Details),
		Success:       entry.Success,
		ErrorMessage:  entry.ErrorMessage,
		UserAgent:     entry.UserAgent,
		RequestPath:   entry.RequestPath,
		RequestMethod: entry.RequestMethod,
		CreatedAt:     now,
	}
}

// Log queues an entry. When the queue is full the entry is dropped.
func (s *AuditService) Log(ctx context.Context, entry AuditLogEntry) {
	if !s.enabled {
		return
	}

	select {
	case s.logChan <- s.build(ctx, entry):
	default:
		log.Printf("[Audit] WARNING: buffer full, dropping event: %s", entry.Action)
	}
}

// LogSync writes an entry immediately.
func (s *AuditService) LogSync(ctx context.Context, entry AuditLogEntry) error {
	if !s.enabled {
		return nil
	}
	return s.store.CreateAuditLog(ctx, s.build(ctx, entry))
}

// ListForUser returns the newest entries attributed to userID.
func (s *AuditService) ListForUser(ctx context.Context, userID string, limit int) ([]models.AuditLog, error) {
	return s.store.ListAuditLogsByActor(ctx, userID, limit)
}

// CleanupOldLogs deletes audit logs older than the retention period
func (s *AuditService) CleanupOldLogs(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteOldAuditLogs(ctx, utcNow().Add(-retention))
}

// Shutdown flushes queued entries and stops the worker.
func (s *AuditService) Shutdown(ctx context.Context) error {
	if !s.enabled {
		return nil
	}

	s.closeOnce.Do(func() { close(s.shutdownCh) })

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("[Audit] service shut down gracefully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("audit service shutdown timeout: %w", ctx.Err())
	}
}

// maskSensitiveDetails redacts secrets and shortens identifiers that are
// useful in logs only in part.
func maskSensitiveDetails(details models.AuditDetails) models.AuditDetails {
	if details == nil {
		return nil
	}

	masked := make(models.AuditDetails, len(details))
	for key, value := range details {
		lower := strings.ToLower(key)
		switch {
		case matchesAny(lower, "token_id", "user_code"):
			if str, ok := value.(string); ok && len(str) > 12 {
				masked[key] = str[:8] + "..." + str[len(str)-4:]
				continue
			}
			masked[key] = value
		case matchesAny(lower, "token", "secret", "device_code", "password"):
			masked[key] = redacted
		default:
			masked[key] = value
		}
	}
	return masked
}

func matchesAny(key string, fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(key, f) {
			return true
		}
	}
	return false
}

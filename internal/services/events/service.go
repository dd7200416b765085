package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var ErrEventStoreDisabled = errors.New("event store is not configured")

// Service writes parcel events to the analytical store and answers history
// queries. The relational side only keeps current status; this is the full
// audit trail.
type Service struct {
	db *gorm.DB

	// Batching state, nil when writes are synchronous. MergeTree engines
	// favor fewer, larger inserts; the queue trades a bounded history lag
	// for that.
	queue     chan *models.ParcelEvent
	batchSize int
	flushEach time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewService wraps the ClickHouse connection with synchronous writes. A nil
// db disables the store; recording becomes a no-op and queries return
// ErrEventStoreDisabled.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NewBatchingService buffers events and inserts them in batches of batchSize
// or every flushEach, whichever comes first. Callers must Close on shutdown
// to flush the tail.
func NewBatchingService(db *gorm.DB, batchSize int, flushEach time.Duration) *Service {
	if db == nil || batchSize <= 1 {
		return NewService(db)
	}
	if flushEach <= 0 {
		flushEach = 5 * time.Second
	}

	s := &Service{
		db:        db,
		queue:     make(chan *models.ParcelEvent, batchSize*4),
		batchSize: batchSize,
		flushEach: flushEach,
		done:      make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Service) Enabled() bool {
	return s != nil && s.db != nil
}

func (s *Service) RecordParcelEvent(ctx context.Context, event *models.ParcelEvent) error {
	if !s.Enabled() {
		return nil
	}

	if s.queue != nil {
		select {
		case s.queue <- event:
			return nil
		default:
			// Queue full: fall through to a direct write rather than
			// dropping the event or blocking the status change.
		}
	}

	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("failed to record parcel event: %w", err)
	}
	return nil
}

// Close flushes buffered events and stops the batch writer. Safe to call on
// a synchronous service and safe to call more than once.
func (s *Service) Close() {
	if s == nil || s.queue == nil {
		return
	}
	s.closeOnce.Do(func() {
		close(s.queue)
		<-s.done
	})
}

func (s *Service) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.flushEach)
	defer ticker.Stop()

	batch := make([]*models.ParcelEvent, 0, s.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.db.CreateInBatches(batch, s.batchSize).Error; err != nil {
			log.Errorf("Failed to flush %d parcel events: %v", len(batch), err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-s.queue:
			if !ok {
				flush()
				return
			}
			batch = append(batch, event)
			if len(batch) >= s.batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// ParcelHistory returns the full event trail for one parcel, oldest first.
func (s *Service) ParcelHistory(ctx context.Context, parcelID uint) ([]models.ParcelEvent, error) {
	if !s.Enabled() {
		return nil, ErrEventStoreDisabled
	}

	var history []models.ParcelEvent
	err := s.db.WithContext(ctx).
		Where("parcel_id = ?", parcelID).
		Order("occurred_at ASC").
		Find(&history).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel history: %w", err)
	}
	return history, nil
}

// StatusCounts aggregates transitions per target status for a seller over a
// recent window, feeding the seller dashboard.
func (s *Service) StatusCounts(ctx context.Context, sellerID uint, days int) (map[models.ParcelStatus]int64, error) {
	if !s.Enabled() {
		return nil, ErrEventStoreDisabled
	}
	if days < 1 || days > 365 {
		days = 30
	}

	type row struct {
		ToStatus models.ParcelStatus
		Count    int64
	}
	var rows []row
	err := s.db.WithContext(ctx).
		Model(&models.ParcelEvent{}).
		Select("to_status, count() AS count").
		Where("seller_id = ? AND occurred_at >= now() - INTERVAL ? DAY", sellerID, days).
		Group("to_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate status counts: %w", err)
	}

	counts := make(map[models.ParcelStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.ToStatus] = r.Count
	}
	return counts, nil
}

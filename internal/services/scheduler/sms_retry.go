package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/services/sms"
)

// SmsRetry periodically re-dispatches SMS messages stuck in QUEUED.
type SmsRetry struct {
	smsService *sms.Service
	interval   time.Duration
	stopChan   chan struct{}
}

func NewSmsRetry(smsService *sms.Service, interval time.Duration) *SmsRetry {
	if interval == 0 {
		interval = 5 * time.Minute
	}
	return &SmsRetry{
		smsService: smsService,
		interval:   interval,
		stopChan:   make(chan struct{}),
	}
}

// Start runs the retry loop until Stop is called or the context is
// cancelled. Callers run it in its own goroutine.
func (s *SmsRetry) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("SMS retry scheduler started, running every %s", s.interval)

	for {
		select {
		case <-ticker.C:
			attempted, err := s.smsService.RedispatchStuck(ctx, s.interval)
			if err != nil {
				log.Printf("Error re-dispatching stuck sms messages: %v", err)
			} else if attempted > 0 {
				log.Printf("Re-dispatched %d stuck sms messages", attempted)
			}
		case <-s.stopChan:
			log.Println("SMS retry scheduler stopped")
			return
		case <-ctx.Done():
			log.Println("SMS retry scheduler stopped due to context cancellation")
			return
		}
	}
}

func (s *SmsRetry) Stop() {
	close(s.stopChan)
}

package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

var (
	ErrSettingsNotFound = errors.New("sms settings not found")
	ErrTemplateNotFound = errors.New("sms template not found")
	ErrSmsDisabled      = errors.New("sms notifications are disabled for this seller")
)

const (
	messageStatusQueued = "QUEUED"
	messageStatusSent   = "SENT"
	messageStatusFailed = "FAILED"

	dispatchTimeout = 30 * time.Second
)

type Service struct {
	db      *gorm.DB
	gateway Gateway
	sender  string
}

func NewService(db *gorm.DB, gateway Gateway, defaultSender string) *Service {
	return &Service{db: db, gateway: gateway, sender: defaultSender}
}

// GetSettings returns the seller's settings, creating a disabled default on
// first access.
func (s *Service) GetSettings(ctx context.Context, sellerID uint) (*models.SmsSettings, error) {
	var settings models.SmsSettings
	err := s.db.WithContext(ctx).Preload("Templates").Where("seller_id = ?", sellerID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.SmsSettings{SellerID: sellerID, Enabled: false}
		if err := s.db.WithContext(ctx).Create(&settings).Error; err != nil {
			return nil, fmt.Errorf("failed to create default sms settings: %w", err)
		}
		return &settings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sms settings: %w", err)
	}
	return &settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, sellerID uint, req *models.SmsSettingsUpdateRequest) (*models.SmsSettings, error) {
	settings, err := s.GetSettings(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if req.Enabled != nil {
		updates["enabled"] = *req.Enabled
	}
	if req.SenderName != nil {
		updates["sender_name"] = *req.SenderName
	}
	if req.EnabledStatuses != nil {
		parts := make([]string, 0, len(req.EnabledStatuses))
		for _, status := range req.EnabledStatuses {
			if !models.ValidParcelStatus(status) {
				return nil, fmt.Errorf("unknown parcel status %q", status)
			}
			parts = append(parts, string(status))
		}
		updates["enabled_statuses"] = models.JoinCSV(parts)
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(settings).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update sms settings: %w", err)
		}
	}
	return s.GetSettings(ctx, sellerID)
}

// UpsertTemplate sets the message body used for one parcel status.
func (s *Service) UpsertTemplate(ctx context.Context, sellerID uint, req *models.SmsTemplateUpsertRequest) (*models.SmsTemplate, error) {
	if !models.ValidParcelStatus(req.Status) {
		return nil, fmt.Errorf("unknown parcel status %q", req.Status)
	}

	settings, err := s.GetSettings(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	var template models.SmsTemplate
	err = s.db.WithContext(ctx).
		Where("settings_id = ? AND status = ?", settings.ID, req.Status).
		First(&template).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		template = models.SmsTemplate{SettingsID: settings.ID, Status: req.Status, Body: req.Body}
		if err := s.db.WithContext(ctx).Create(&template).Error; err != nil {
			return nil, fmt.Errorf("failed to create sms template: %w", err)
		}
		return &template, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sms template: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&template).Update("body", req.Body).Error; err != nil {
		return nil, fmt.Errorf("failed to update sms template: %w", err)
	}
	return &template, nil
}

func (s *Service) DeleteTemplate(ctx context.Context, sellerID uint, status models.ParcelStatus) error {
	settings, err := s.GetSettings(ctx, sellerID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).
		Where("settings_id = ? AND status = ?", settings.ID, status).
		Delete(&models.SmsTemplate{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete sms template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// NotifyStatusChange queues the seller's configured SMS for a parcel status
// change and returns once the message row is written; delivery runs off the
// request path. Failures are recorded on the message row, never propagated
// to the status change itself.
func (s *Service) NotifyStatusChange(ctx context.Context, parcel *models.Parcel, status models.ParcelStatus) {
	settings, err := s.GetSettings(ctx, parcel.SellerID)
	if err != nil {
		log.Errorf("Failed to load sms settings for seller %d: %v", parcel.SellerID, err)
		return
	}
	if !settings.NotifiesOn(status) {
		return
	}

	body := s.renderBody(settings, parcel, status)
	if body == "" {
		return
	}

	message := &models.SmsMessage{
		SellerID: parcel.SellerID,
		ParcelID: &parcel.ID,
		Phone:    parcel.RecipientPhone,
		Body:     body,
		Status:   messageStatusQueued,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Errorf("Failed to queue sms for parcel %s: %v", parcel.Code, err)
		return
	}

	// A slow provider must not stall the status change. The retry scheduler
	// re-sends anything still QUEUED if the process dies before this finishes.
	sender := settings.SenderName
	go func() {
		dctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()
		s.dispatch(dctx, message, sender)
	}()
}

func (s *Service) dispatch(ctx context.Context, message *models.SmsMessage, sender string) {
	if s.gateway == nil {
		return
	}
	if sender == "" {
		sender = s.sender
	}

	updates := make(map[string]any)
	if err := s.gateway.Send(ctx, message.Phone, sender, message.Body); err != nil {
		log.Warnf("SMS delivery failed for %s: %v", message.Phone, err)
		updates["status"] = messageStatusFailed
		updates["error"] = err.Error()
	} else {
		now := time.Now().UTC()
		updates["status"] = messageStatusSent
		updates["sent_at"] = &now
	}

	if err := s.db.WithContext(ctx).Model(message).Updates(updates).Error; err != nil {
		log.Errorf("Failed to update sms message %d: %v", message.ID, err)
	}
}

// RedispatchStuck retries QUEUED messages that never made it to the gateway,
// typically because the process died between queueing and dispatch or the
// circuit breaker was open. Returns the number of messages attempted.
func (s *Service) RedispatchStuck(ctx context.Context, olderThan time.Duration) (int, error) {
	if s.gateway == nil {
		return 0, nil
	}

	cutoff := time.Now().UTC().Add(-olderThan)

	var stuck []models.SmsMessage
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", messageStatusQueued, cutoff).
		Order("created_at ASC").
		Limit(100).
		Find(&stuck).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list stuck sms messages: %w", err)
	}

	senders := make(map[uint]string)
	for i := range stuck {
		message := &stuck[i]
		sender, ok := senders[message.SellerID]
		if !ok {
			if settings, err := s.GetSettings(ctx, message.SellerID); err == nil {
				sender = settings.SenderName
			}
			senders[message.SellerID] = sender
		}
		s.dispatch(ctx, message, sender)
	}

	return len(stuck), nil
}

func (s *Service) ListMessages(ctx context.Context, sellerID uint, limit int) ([]models.SmsMessage, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}

	var messages []models.SmsMessage
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sms messages: %w", err)
	}
	return messages, nil
}

func (s *Service) renderBody(settings *models.SmsSettings, parcel *models.Parcel, status models.ParcelStatus) string {
	for _, template := range settings.Templates {
		if template.Status == status {
			return RenderTemplate(template.Body, parcel)
		}
	}
	return defaultBody(parcel, status)
}

// RenderTemplate substitutes {code}, {recipient}, {city} and {status}
// placeholders. Unknown placeholders pass through untouched.
func RenderTemplate(body string, parcel *models.Parcel) string {
	cityName := ""
	if parcel.City != nil {
		cityName = parcel.City.Name
	}
	replacer := strings.NewReplacer(
		"{code}", parcel.Code,
		"{recipient}", parcel.RecipientName,
		"{city}", cityName,
		"{status}", string(parcel.Status),
	)
	return replacer.Replace(body)
}

func defaultBody(parcel *models.Parcel, status models.ParcelStatus) string {
	switch status {
	case models.ParcelStatusInTransit:
		return fmt.Sprintf("Your parcel %s is out for delivery.", parcel.Code)
	case models.ParcelStatusDelivered:
		return fmt.Sprintf("Your parcel %s has been delivered. Thank you!", parcel.Code)
	default:
		return ""
	}
}

package models

import "time"

// SmsSettings configures per-seller parcel notifications: which status
// changes fire an SMS and the template used for each.
type SmsSettings struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	SellerID        uint      `gorm:"uniqueIndex;not null" json:"seller_id"`
	Enabled         bool      `gorm:"default:false" json:"enabled"`
	SenderName      string    `gorm:"size:11" json:"sender_name,omitempty"`
	EnabledStatuses string    `gorm:"type:text" json:"-"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Templates []SmsTemplate `gorm:"foreignKey:SettingsID" json:"templates,omitempty"`
}

func (SmsSettings) TableName() string {
	return "sms_settings"
}

func (s *SmsSettings) StatusList() []ParcelStatus {
	parts := splitCSV(s.EnabledStatuses)
	out := make([]ParcelStatus, 0, len(parts))
	for _, p := range parts {
		out = append(out, ParcelStatus(p))
	}
	return out
}

// NotifiesOn reports whether this seller wants an SMS for the given status.
func (s *SmsSettings) NotifiesOn(status ParcelStatus) bool {
	if !s.Enabled {
		return false
	}
	for _, enabled := range s.StatusList() {
		if enabled == status {
			return true
		}
	}
	return false
}

type SmsTemplate struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	SettingsID uint         `gorm:"not null;index" json:"settings_id"`
	Status     ParcelStatus `gorm:"size:20;not null" json:"status"`
	Body       string       `gorm:"type:text;not null" json:"body"`
}

func (SmsTemplate) TableName() string {
	return "sms_templates"
}

type SmsMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SellerID  uint      `gorm:"index" json:"seller_id"`
	ParcelID  *uint     `gorm:"index" json:"parcel_id,omitempty"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Status    string    `gorm:"size:16;not null;default:'QUEUED';index" json:"status"`
	Error     string    `gorm:"type:text" json:"error,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SmsMessage) TableName() string {
	return "sms_messages"
}

type SmsSettingsUpdateRequest struct {
	Enabled         *bool          `json:"enabled,omitempty"`
	SenderName      *string        `json:"sender_name,omitempty"`
	EnabledStatuses []ParcelStatus `json:"enabled_statuses,omitempty"`
}

type SmsTemplateUpsertRequest struct {
	Status ParcelStatus `json:"status" validate:"required"`
	Body   string       `json:"body" validate:"required,max=480"`
}

// SmsGatewayConfig configures the outbound SMS provider.
type SmsGatewayConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	BaseURL    string `yaml:"base_url" json:"base_url"`
	APIKey     string `yaml:"api_key" json:"-"`
	Sender     string `yaml:"sender,omitempty" json:"sender,omitempty"`
	TimeoutSec int    `yaml:"timeout_sec,omitempty" json:"timeout_sec,omitzero"`
}

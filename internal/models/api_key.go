package models

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// APIKey is an integration credential a seller uses to push parcels from
// their own shop system. Only the SHA-256 hash is stored.
type APIKey struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	SellerID     uint       `gorm:"not null;index" json:"seller_id"`
	Name         string     `gorm:"not null;size:255" json:"name"`
	KeyHash      string     `gorm:"uniqueIndex;not null;size:64" json:"-"`
	KeyPrefix    string     `gorm:"index;size:12" json:"key_prefix"`
	Scopes       string     `gorm:"type:text" json:"scopes,omitempty"`
	RateLimitRpm *int       `json:"rate_limit_rpm,omitempty"`
	IsActive     bool       `gorm:"default:true;index" json:"is_active"`
	ExpiresAt    *time.Time `gorm:"index" json:"expires_at,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (APIKey) TableName() string {
	return "api_keys"
}

type APIKeyConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	HeaderName string `yaml:"header_name,omitempty" json:"header_name,omitempty"`
}

func DefaultAPIKeyConfig() APIKeyConfig {
	return APIKeyConfig{
		Enabled:    true,
		HeaderName: "X-API-Key",
	}
}

type APIKeyCreateRequest struct {
	Name         string     `json:"name" validate:"required,min=1,max=255"`
	Scopes       []string   `json:"scopes,omitempty"`
	RateLimitRpm *int       `json:"rate_limit_rpm,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

type APIKeyResponse struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Key          string     `json:"key,omitempty"`
	KeyPrefix    string     `json:"key_prefix"`
	Scopes       string     `json:"scopes,omitempty"`
	RateLimitRpm *int       `json:"rate_limit_rpm,omitempty"`
	IsActive     bool       `json:"is_active"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (k *APIKey) ToResponse() APIKeyResponse {
	return APIKeyResponse{
		ID:           k.ID,
		Name:         k.Name,
		KeyPrefix:    k.KeyPrefix,
		Scopes:       k.Scopes,
		RateLimitRpm: k.RateLimitRpm,
		IsActive:     k.IsActive,
		ExpiresAt:    k.ExpiresAt,
		LastUsedAt:   k.LastUsedAt,
		CreatedAt:    k.CreatedAt,
	}
}

func GenerateAPIKey() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return "dlk_" + base64.URLEncoding.EncodeToString(b)[:43], nil
}

func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash)
}

func ExtractKeyPrefix(key string) string {
	if len(key) < 12 {
		return key
	}
	return key[:12]
}

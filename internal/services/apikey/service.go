package apikey

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Ouakat/SaaS-Delivery-sub001/internal/models"
	"gorm.io/gorm"
)

var (
	ErrKeyNotFound = errors.New("API key not found")
	ErrKeyInvalid  = errors.New("invalid API key")
	ErrKeyExpired  = errors.New("API key has expired")
)

// Service manages seller integration keys: credentials external shop systems
// use to push parcels into the platform.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) CreateAPIKey(ctx context.Context, sellerID uint, req *models.APIKeyCreateRequest) (*models.APIKeyResponse, error) {
	key, err := models.GenerateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate API key: %w", err)
	}

	apiKey := &models.APIKey{
		SellerID:     sellerID,
		Name:         req.Name,
		KeyHash:      models.HashAPIKey(key),
		KeyPrefix:    models.ExtractKeyPrefix(key),
		Scopes:       models.JoinCSV(req.Scopes),
		RateLimitRpm: req.RateLimitRpm,
		IsActive:     true,
		ExpiresAt:    req.ExpiresAt,
	}

	if err := s.db.WithContext(ctx).Create(apiKey).Error; err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}

	// The plaintext key is returned exactly once.
	response := apiKey.ToResponse()
	response.Key = key
	return &response, nil
}

func (s *Service) ValidateAPIKey(ctx context.Context, key string) (*models.APIKey, error) {
	if key == "" {
		return nil, ErrKeyInvalid
	}

	keyHash := models.HashAPIKey(key)
	var apiKey models.APIKey

	err := s.db.WithContext(ctx).
		Where("key_hash = ? AND is_active = ?", keyHash, true).
		First(&apiKey).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrKeyInvalid
		}
		return nil, fmt.Errorf("failed to validate API key: %w", err)
	}

	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
		return nil, ErrKeyExpired
	}

	now := time.Now()
	s.db.WithContext(ctx).Model(&apiKey).UpdateColumn("last_used_at", now)
	apiKey.LastUsedAt = &now

	return &apiKey, nil
}

func (s *Service) ListAPIKeys(ctx context.Context, sellerID uint) ([]models.APIKeyResponse, error) {
	var keys []models.APIKey
	err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}

	responses := make([]models.APIKeyResponse, len(keys))
	for i := range keys {
		responses[i] = keys[i].ToResponse()
	}
	return responses, nil
}

func (s *Service) RevokeAPIKey(ctx context.Context, sellerID, keyID uint) error {
	result := s.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ? AND seller_id = ?", keyID, sellerID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke API key: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrKeyNotFound
	}
	return nil
}
